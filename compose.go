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
	"fmt"
	"image"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

var (
	// ImageCacheSize is the default size of image caches. The composition of
	// mosaics is much faster if tiles don't have to be decoded again each time
	// they're used. It must be a number ≥ 1.
	ImageCacheSize = 15
)

// ImageCache is used to cache the cropped tile blocks during mosaic
// generation. The same tile often appears many times in a mosaic (usually in
// the same area), and decoding a jpeg is not very fast.
//
// If the cache is full the image inserted first is removed.
//
// Caches are safe for concurrent use.
type ImageCache struct {
	m           *sync.Mutex
	size        int
	content     map[string]*image.RGBA
	insertOrder []string
}

// NewImageCache returns an empty image cache. size is the number of images that
// will be cached. size must be ≥ 1.
func NewImageCache(size int) *ImageCache {
	if size <= 0 {
		size = 1
	}
	var m sync.Mutex
	return &ImageCache{
		m:           &m,
		size:        size,
		content:     make(map[string]*image.RGBA, size),
		insertOrder: make([]string, 0, size),
	}
}

func (cache *ImageCache) keyFormat(id TileID, edge int) string {
	return fmt.Sprintf("%d-%s", edge, id)
}

// Len returns the number of cached images.
func (cache *ImageCache) Len() int {
	cache.m.Lock()
	defer cache.m.Unlock()
	return len(cache.insertOrder)
}

// Put adds an image to the cache. Usually Put is called after Get: If the
// image was not found in the cache it is loaded and then added to the cache via
// Put.
func (cache *ImageCache) Put(id TileID, edge int, img *image.RGBA) {
	cache.m.Lock()
	defer cache.m.Unlock()
	key := cache.keyFormat(id, edge)
	// first check if image already in cache, if yes do nothing
	if _, has := cache.content[key]; has {
		return
	}
	if len(cache.insertOrder) >= cache.size {
		// cache full, remove first element form cache
		// since size must be >= 1 this should be fine
		fst := cache.insertOrder[0]
		cache.insertOrder = cache.insertOrder[1:]
		delete(cache.content, fst)
	}
	cache.insertOrder = append(cache.insertOrder, key)
	cache.content[key] = img
}

// Get returns the image from the cache. If the return value is nil the image
// was not found in the cache and should be added to the cache by Put.
func (cache *ImageCache) Get(id TileID, edge int) *image.RGBA {
	cache.m.Lock()
	defer cache.m.Unlock()
	return cache.content[cache.keyFormat(id, edge)]
}

// CropTile returns a copy of the top left edge × edge block of img.
// If img is smaller than that in any dimension an error wrapping
// ErrTileTooSmall is returned.
func CropTile(img image.Image, edge int) (*image.RGBA, error) {
	bounds := img.Bounds()
	if bounds.Dx() < edge || bounds.Dy() < edge {
		return nil, fmt.Errorf("%w: tile is %dx%d, need %dx%d",
			ErrTileTooSmall, bounds.Dx(), bounds.Dy(), edge, edge)
	}
	res := image.NewRGBA(image.Rect(0, 0, edge, edge))
	draw.Draw(res, res.Bounds(), img, bounds.Min, draw.Src)
	return res, nil
}

// CellProcessor replaces single cells of a mosaic buffer by the best
// matching tile.
//
// The buffer passed to Process is expected to start at (0, 0), the windows
// are the windows of a Grid for that buffer.
type CellProcessor struct {
	Index   *TileIndex
	Storage TileStorage
	Edge    int
	// Metric is used to compare colors, if nil SquaredDistance is used.
	Metric ColorMetric
	// Cache is used to lookup the tile blocks, if nil tiles are loaded each
	// time.
	Cache *ImageCache
}

// NewCellProcessor returns a processor with SquaredDistance and a new cache
// of size ImageCacheSize.
func NewCellProcessor(index *TileIndex, storage TileStorage, edge int) *CellProcessor {
	return &CellProcessor{
		Index:   index,
		Storage: storage,
		Edge:    edge,
		Metric:  SquaredDistance,
		Cache:   NewImageCache(ImageCacheSize),
	}
}

// Tile returns the top left Edge × Edge block of a tile, from the cache if
// possible.
func (p *CellProcessor) Tile(id TileID) (*image.RGBA, error) {
	if p.Cache != nil {
		if img := p.Cache.Get(id, p.Edge); img != nil {
			return img, nil
		}
	}
	img, err := p.Storage.LoadTile(id)
	if err != nil {
		return nil, err
	}
	block, err := CropTile(img, p.Edge)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		p.Cache.Put(id, p.Edge, block)
	}
	return block, nil
}

// Process replaces the window w of buf by the tile that matches the average
// color of the window best.
//
// The window is clamped to the bounds of buf first, if nothing remains this is
// a no-op and returns an empty id. The average color is computed over the
// clamped region only. The top left block of the tile is copied to the top
// left corner of the window, clipped to the size of the clamped window.
//
// It returns the id of the selected tile. All errors are wrapped in a
// *CellError.
func (p *CellProcessor) Process(buf *image.RGBA, w Window) (TileID, error) {
	clamped := w.Clamp(buf.Bounds())
	if clamped.Empty() {
		return "", nil
	}
	area := clamped.Rect()
	avg := ComputeAverageColor(buf.SubImage(area))
	record, _, err := p.Index.NearestWithMetric(avg, p.Metric)
	if err != nil {
		return "", &CellError{Window: w, Err: err}
	}
	tile, err := p.Tile(record.ID)
	if err != nil {
		return record.ID, &CellError{Window: w, Tile: record.ID, Err: err}
	}
	// the tile is exactly Edge × Edge and area is at most that large, thus
	// draw copies the top left part of the tile that fits
	draw.Draw(buf, area, tile, tile.Bounds().Min, draw.Src)
	if log.IsLevelEnabled(log.TraceLevel) {
		log.WithFields(log.Fields{
			"window":  clamped,
			"average": avg,
			"tile":    record.ID,
		}).Trace("Processed cell")
	}
	return record.ID, nil
}
