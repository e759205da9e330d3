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
	"errors"
	"fmt"
)

var (
	// ErrEmptyIndex is returned if a tile index contains no candidate tiles,
	// for example if an index file only contains the metadata entry.
	ErrEmptyIndex = errors.New("tile index contains no tiles")

	// ErrTileTooSmall is returned if a tile image is smaller than the mosaic
	// edge length and thus can't fill a whole cell.
	ErrTileTooSmall = errors.New("tile is smaller than the mosaic edge")
)

// DecodeError is returned if an image (tile or target) can't be opened or
// decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("can't decode image %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ConfigError describes an invalid configuration value. It is returned before
// any processing starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Reason)
}

// CellError is returned if processing of a single cell failed. It contains
// the window of the cell and the selected tile (empty if no tile was selected
// yet).
type CellError struct {
	Window Window
	Tile   TileID
	Err    error
}

func (e *CellError) Error() string {
	if e.Tile == "" {
		return fmt.Sprintf("cell %v: %v", e.Window, e.Err)
	}
	return fmt.Sprintf("cell %v (tile %q): %v", e.Window, e.Tile, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}
