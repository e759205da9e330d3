// Copyright 2018 Fabian Wenzelmann
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pyzantine

import (
	"image"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// BuildStats describes the last run of a Builder.
type BuildStats struct {
	RunID    uuid.UUID
	Cells    int
	Tiles    int
	Duration time.Duration
}

// Builder creates mosaics for a fixed tile index.
//
// A builder is not safe for concurrent use, but the index and storage can
// be shared between builders.
type Builder struct {
	Config    Config
	Index     *TileIndex
	Storage   TileStorage
	Progress  ProgressFunc
	processor *CellProcessor
	stats     BuildStats
}

// NewBuilder returns a new builder. Only the settings required to compose a
// mosaic are checked (edge, metric and cache size), paths are ignored.
// The returned error is a *ConfigError or ErrEmptyIndex.
func NewBuilder(cfg Config, index *TileIndex, storage TileStorage) (*Builder, error) {
	if err := cfg.validateBuild(); err != nil {
		return nil, err
	}
	if index.Len() == 0 {
		return nil, ErrEmptyIndex
	}
	metric, _ := GetColorMetric(cfg.Metric)
	processor := &CellProcessor{
		Index:   index,
		Storage: storage,
		Edge:    cfg.Edge,
		Metric:  metric,
		Cache:   NewImageCache(cfg.CacheSize),
	}
	return &Builder{
		Config:    cfg,
		Index:     index,
		Storage:   storage,
		Progress:  ProgressIgnore,
		processor: processor,
	}, nil
}

// Stats returns information about the last call to Build.
func (b *Builder) Stats() BuildStats {
	return b.stats
}

// Build creates the mosaic for target.
//
// The target is copied into a new buffer starting at (0, 0), the target itself
// is never modified. All windows of the grid are processed in row-major
// order, each one replaced by its best matching tile. Cells at the right and
// bottom border are clipped to the image.
//
// On the first error processing stops and the error is returned, no partial
// result is returned.
func (b *Builder) Build(target image.Image) (*image.RGBA, error) {
	start := time.Now()
	runID := uuid.New()
	logger := log.WithField("run", runID.String())

	bounds := target.Bounds()
	buf := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(buf, buf.Bounds(), target, bounds.Min, draw.Src)

	grid := GridForBounds(buf.Bounds(), b.Config.Edge)
	logger.WithFields(log.Fields{
		"width":  bounds.Dx(),
		"height": bounds.Dy(),
		"edge":   b.Config.Edge,
		"cols":   grid.Cols(),
		"rows":   grid.Rows(),
		"tiles":  b.Index.Len(),
	}).Info("Creating mosaic")

	progress := b.Progress
	if progress == nil {
		progress = ProgressIgnore
	}
	used := make(map[TileID]struct{})
	num := 0
	err := grid.Walk(func(w Window) error {
		id, cellErr := b.processor.Process(buf, w)
		if cellErr != nil {
			return cellErr
		}
		if id != "" {
			used[id] = struct{}{}
		}
		num++
		progress(num)
		return nil
	})
	if err != nil {
		logger.WithError(err).Error("Mosaic creation failed")
		return nil, err
	}
	b.stats = BuildStats{
		RunID:    runID,
		Cells:    num,
		Tiles:    len(used),
		Duration: time.Since(start),
	}
	logger.WithFields(log.Fields{
		"cells":    num,
		"tiles":    len(used),
		"duration": b.stats.Duration,
	}).Infof("Analysed %d squares", num)
	return buf, nil
}

// BuildMosaic creates a mosaic for target with the default settings and the
// given edge length. See Builder.Build for details.
func BuildMosaic(target image.Image, index *TileIndex, storage TileStorage, edge int) (*image.RGBA, error) {
	cfg := DefaultConfig()
	cfg.Edge = edge
	builder, err := NewBuilder(cfg, index, storage)
	if err != nil {
		return nil, err
	}
	return builder.Build(target)
}

// Run executes a complete mosaic run for a validated config: It loads the
// index and the target image, creates the mosaic and writes it to the output
// file. progress may be nil, it is called with the number of cells once the
// target is loaded.
func Run(cfg Config, progress ProgressFactory) (BuildStats, error) {
	if err := cfg.Validate(); err != nil {
		return BuildStats{}, err
	}
	index, file, err := LoadTileIndex(cfg.IndexPath)
	if err != nil {
		return BuildStats{}, err
	}
	if checkErr := file.CheckData(cfg.Edge); checkErr != nil {
		log.WithError(checkErr).Warn("Index file might not fit the configuration")
	}
	target, err := LoadImage(cfg.TargetPath)
	if err != nil {
		return BuildStats{}, err
	}
	builder, err := NewBuilder(cfg, index, NewFSTileStorage(cfg.TileRoot))
	if err != nil {
		return BuildStats{}, err
	}
	if progress != nil {
		grid := GridForBounds(target.Bounds(), cfg.Edge)
		builder.Progress = progress(grid.Len())
	}
	mosaic, err := builder.Build(target)
	if err != nil {
		return BuildStats{}, err
	}
	if err := SaveImage(cfg.OutputPath, mosaic, cfg.JPGQuality); err != nil {
		return BuildStats{}, err
	}
	log.WithField("path", cfg.OutputPath).Info("Mosaic saved")
	return builder.Stats(), nil
}
