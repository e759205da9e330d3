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
	"os"
	"path/filepath"
	"sort"
)

// TileStorage loads tile images given their id.
//
// Implementations must return a *DecodeError if the tile exists but can't be
// decoded.
type TileStorage interface {
	LoadTile(id TileID) (image.Image, error)
	LoadTileConfig(id TileID) (image.Config, error)
}

// FSTileStorage implements TileStorage. It uses images stored on the
// filesystem and opens them on demand.
// The id of a tile is its path. Relative paths are resolved against Root,
// if Root is empty they're relative to the working directory.
type FSTileStorage struct {
	Root string
}

// NewFSTileStorage returns a new storage.
func NewFSTileStorage(root string) *FSTileStorage {
	return &FSTileStorage{Root: root}
}

// GetPath returns the file path of a tile.
func (s *FSTileStorage) GetPath(id TileID) string {
	path := string(id)
	if s.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Root, path)
}

// LoadTile opens and decodes the tile image.
func (s *FSTileStorage) LoadTile(id TileID) (image.Image, error) {
	return LoadImage(s.GetPath(id))
}

// LoadTileConfig returns the color model and dimensions of the tile without
// decoding the whole image.
func (s *FSTileStorage) LoadTileConfig(id TileID) (image.Config, error) {
	return LoadImageConfig(s.GetPath(id))
}

// MemTileStorage implements TileStorage and keeps all images in memory.
type MemTileStorage map[TileID]image.Image

// LoadTile returns the stored image. Missing tiles are reported as a
// *DecodeError.
func (s MemTileStorage) LoadTile(id TileID) (image.Image, error) {
	img, has := s[id]
	if !has {
		return nil, &DecodeError{Path: string(id), Err: os.ErrNotExist}
	}
	return img, nil
}

// LoadTileConfig returns the dimensions of the stored image.
func (s MemTileStorage) LoadTileConfig(id TileID) (image.Config, error) {
	img, err := s.LoadTile(id)
	if err != nil {
		return image.Config{}, err
	}
	bounds := img.Bounds()
	return image.Config{ColorModel: img.ColorModel(), Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// FindImages returns all images in root that match the filter (JPGOnly if
// filter is nil). If recursive is true all subdirectories are searched as
// well.
//
// The returned paths are root joined with the path of the file relative to
// root, sorted lexicographically.
func FindImages(root string, recursive bool, filter SupportedImageFunc) ([]string, error) {
	if filter == nil {
		filter = JPGOnly
	}
	var res []string
	var err error
	if recursive {
		res, err = findImagesRecursive(root, filter)
	} else {
		res, err = findImagesNonRecursive(root, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("searching images in %q: %w", root, err)
	}
	sort.Strings(res)
	return res, nil
}

func findImagesRecursive(root string, filter SupportedImageFunc) ([]string, error) {
	result := make([]string, 0)
	walkFunc := func(path string, d os.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case !d.IsDir() && filter(filepath.Ext(path)):
			result = append(result, path)
			return nil
		default:
			return nil
		}
	}
	if err := filepath.WalkDir(root, walkFunc); err != nil {
		return nil, err
	}
	return result, nil
}

func findImagesNonRecursive(root string, filter SupportedImageFunc) ([]string, error) {
	files, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(files))
	for _, file := range files {
		if !file.IsDir() && filter(filepath.Ext(file.Name())) {
			result = append(result, filepath.Join(root, file.Name()))
		}
	}
	return result, nil
}
