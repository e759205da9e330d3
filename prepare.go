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
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// CropToSquare returns the top left square of img, its edge length is the
// shorter side of img.
func CropToSquare(img image.Image) image.Image {
	bounds := img.Bounds()
	short := IntMin(bounds.Dx(), bounds.Dy())
	r := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+short, bounds.Min.Y+short)
	if r == bounds {
		return img
	}
	if sub, err := SubImage(img, r); err == nil {
		return sub
	}
	res := image.NewRGBA(image.Rect(0, 0, short, short))
	draw.Draw(res, res.Bounds(), img, r.Min, draw.Src)
	return res
}

// ResizeTile scales img to edge × edge. If resizer is nil DefaultResizer is
// used.
func ResizeTile(img image.Image, edge int, resizer ImageResizer) image.Image {
	if resizer == nil {
		resizer = DefaultResizer
	}
	bounds := img.Bounds()
	if bounds.Dx() == edge && bounds.Dy() == edge {
		return img
	}
	return resizer.Resize(uint(edge), uint(edge), img)
}

// PrepareTile turns an arbitrary photo into a tile: It crops the photo to a
// square and scales it to edge × edge.
func PrepareTile(img image.Image, edge int, resizer ImageResizer) image.Image {
	return ResizeTile(CropToSquare(img), edge, resizer)
}

// PrepareOptions controls PrepareLibrary.
type PrepareOptions struct {
	Edge       int
	Resizer    ImageResizer
	Routines   int
	Recursive  bool
	Filter     SupportedImageFunc
	JPGQuality int
	// Progress is called with the number of images found, it may be nil.
	Progress ProgressFactory
}

// DefaultPrepareOptions returns the options used by the command line tool.
func DefaultPrepareOptions() PrepareOptions {
	return PrepareOptions{
		Edge:       DefaultEdge,
		Resizer:    DefaultResizer,
		Routines:   1,
		Filter:     JPGOnly,
		JPGQuality: DefaultJPGQuality,
	}
}

// tileFileName returns the path of the prepared tile for src. The directory
// structure below srcDir is kept, the file is always a jpeg.
func tileFileName(srcDir, dstDir, src string) (string, error) {
	rel, err := filepath.Rel(srcDir, src)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(rel)
	return filepath.Join(dstDir, strings.TrimSuffix(rel, ext)+".jpg"), nil
}

// PrepareLibrary prepares all images found in srcDir (see FindImages) and
// writes the tiles to dstDir. It returns the paths of the written tiles in
// the order of the source images.
//
// Images are processed concurrently by opts.Routines goroutines. The first
// error cancels the remaining work.
func PrepareLibrary(ctx context.Context, srcDir, dstDir string, opts PrepareOptions) ([]string, error) {
	if opts.Edge <= 0 {
		return nil, &ConfigError{Field: "edge", Reason: fmt.Sprintf("must be a positive integer, got %d", opts.Edge)}
	}
	if opts.JPGQuality < 1 || opts.JPGQuality > 100 {
		return nil, &ConfigError{Field: "jpeg-quality", Reason: fmt.Sprintf("must be between 1 and 100, got %d", opts.JPGQuality)}
	}
	routines := opts.Routines
	if routines <= 0 {
		routines = 1
	}
	start := time.Now()
	sources, err := FindImages(srcDir, opts.Recursive, opts.Filter)
	if err != nil {
		return nil, err
	}
	progress := ProgressIgnore
	if opts.Progress != nil {
		progress = opts.Progress(len(sources))
	}
	log.WithFields(log.Fields{
		"src":    srcDir,
		"dst":    dstDir,
		"images": len(sources),
		"edge":   opts.Edge,
	}).Info("Preparing tiles")

	dsts := make([]string, len(sources))
	seen := make(map[string]string, len(sources))
	for i, src := range sources {
		dst, err := tileFileName(srcDir, dstDir, src)
		if err != nil {
			return nil, err
		}
		if other, ok := seen[dst]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", other, src, dst)
		}
		seen[dst] = src
		dsts[i] = dst
	}

	res := make([]string, len(sources))
	var mu sync.Mutex
	done := 0

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(routines)
	for i, src := range sources {
		i, src := i, src
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dst := dsts[i]
			img, err := LoadImage(src)
			if err != nil {
				return err
			}
			tile := PrepareTile(img, opts.Edge, opts.Resizer)
			if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
				return err
			}
			if err := SaveImage(dst, tile, opts.JPGQuality); err != nil {
				return err
			}
			res[i] = dst
			mu.Lock()
			done++
			progress(done)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"tiles":    len(res),
		"duration": time.Since(start),
	}).Info("Prepared tiles")
	return res, nil
}
