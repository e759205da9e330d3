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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// IndexOptions controls the creation of index files.
type IndexOptions struct {
	// Edge is the edge length the tiles are used for. If > 0 tiles smaller
	// than Edge × Edge are rejected and the average is computed over the top
	// left Edge × Edge block only, the same block that is used in the mosaic.
	// If 0 the average of the whole tile is used.
	Edge int
	// Routines is the number of tiles processed concurrently, values ≤ 0
	// mean 1.
	Routines int
	// SkipInvalid skips tiles that can't be decoded or are too small, instead
	// of returning an error.
	SkipInvalid bool
	// Root is stored in the metadata of the index.
	Root string
	// Progress is called after each tile, it may be nil.
	Progress ProgressFunc
}

// ComputeTileColor loads a tile and computes its average color, see
// IndexOptions.Edge for the meaning of edge.
func ComputeTileColor(storage TileStorage, id TileID, edge int) (AverageColor, error) {
	img, err := storage.LoadTile(id)
	if err != nil {
		return AverageColor{}, err
	}
	if edge <= 0 {
		return ComputeAverageColor(img), nil
	}
	block, err := CropTile(img, edge)
	if err != nil {
		return AverageColor{}, fmt.Errorf("tile %q: %w", id, err)
	}
	return ComputeAverageColor(block), nil
}

// BuildIndexFile computes the average color of all tiles concurrently and
// returns the index file containing them. The entries are sorted by id, so
// the result doesn't depend on the order in which the tiles are processed.
//
// The first error cancels the remaining work, unless opts.SkipInvalid is set
// and the error is a *DecodeError or ErrTileTooSmall.
func BuildIndexFile(ctx context.Context, storage TileStorage, ids []TileID, opts IndexOptions) (*IndexFile, error) {
	routines := opts.Routines
	if routines <= 0 {
		routines = 1
	}
	progress := opts.Progress
	if progress == nil {
		progress = ProgressIgnore
	}
	start := time.Now()

	for _, id := range ids {
		if id == MetaKey {
			return nil, fmt.Errorf("tile path %q is reserved", MetaKey)
		}
	}

	res := NewIndexFile(len(ids))
	var mu sync.Mutex
	done, skipped := 0, 0

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(routines)
	for _, id := range ids {
		id := id
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := ComputeTileColor(storage, id, opts.Edge)
			mu.Lock()
			defer mu.Unlock()
			done++
			defer progress(done)
			if err != nil {
				if opts.SkipInvalid && isInvalidTile(err) {
					log.WithError(err).WithField("tile", id).Warn("Skipping tile")
					skipped++
					return nil
				}
				return err
			}
			res.Add(id, c)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	res.Sort()
	res.Meta = IndexMeta{
		Version: Version,
		ID:      uuid.New().String(),
		Edge:    opts.Edge,
		Created: time.Now().UTC(),
		Count:   len(res.Entries),
		Root:    opts.Root,
	}
	log.WithFields(log.Fields{
		"tiles":    len(res.Entries),
		"skipped":  skipped,
		"routines": routines,
		"duration": time.Since(start),
	}).Info("Computed tile colors")
	return res, nil
}

func isInvalidTile(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr) || errors.Is(err, ErrTileTooSmall)
}

// CheckTileSizes returns all tiles that are smaller than edge × edge. It only
// reads the image headers.
func CheckTileSizes(storage TileStorage, ids []TileID, edge int) ([]TileID, error) {
	res := make([]TileID, 0)
	for _, id := range ids {
		config, err := storage.LoadTileConfig(id)
		if err != nil {
			return nil, err
		}
		if config.Width < edge || config.Height < edge {
			res = append(res, id)
		}
	}
	return res, nil
}
