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
)

// Window describes one cell of the target image in pixel coordinates.
// Left and Top are inclusive, Right and Bottom are exclusive (as in
// image.Rectangle).
//
// Windows created by a Grid are "ideal" windows: The last column / row might
// reach beyond the image if the image dimensions are not a multiple of the
// edge length. Use Clamp to get the part that actually intersects with the
// image.
type Window struct {
	Left, Top, Right, Bottom int
}

// Rect returns the window as an image.Rectangle.
func (w Window) Rect() image.Rectangle {
	return image.Rect(w.Left, w.Top, w.Right, w.Bottom)
}

// Dx returns the width of the window.
func (w Window) Dx() int {
	return w.Right - w.Left
}

// Dy returns the height of the window.
func (w Window) Dy() int {
	return w.Bottom - w.Top
}

// Empty reports whether the window contains no pixels.
func (w Window) Empty() bool {
	return w.Left >= w.Right || w.Top >= w.Bottom
}

// Min returns the top left corner of the window.
func (w Window) Min() image.Point {
	return image.Pt(w.Left, w.Top)
}

// Clamp returns the part of the window that lies inside bounds.
// If the window and bounds don't intersect the result is empty.
func (w Window) Clamp(bounds image.Rectangle) Window {
	return Window{
		Left:   IntMax(w.Left, bounds.Min.X),
		Top:    IntMax(w.Top, bounds.Min.Y),
		Right:  IntMin(w.Right, bounds.Max.X),
		Bottom: IntMin(w.Bottom, bounds.Max.Y),
	}
}

func (w Window) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", w.Left, w.Top, w.Right, w.Bottom)
}

// Grid divides an image of size Width × Height into square cells with the
// given edge length. The first cell starts at (0, 0).
//
// The number of columns is ⌈Width / Edge⌉ and the number of rows is
// ⌈Height / Edge⌉, that means an image smaller than the edge still
// consists of exactly one cell.
type Grid struct {
	Width, Height, Edge int
}

// NewGrid returns a new grid. edge must be > 0.
func NewGrid(width, height, edge int) Grid {
	return Grid{Width: width, Height: height, Edge: edge}
}

// GridForBounds returns the grid for an image with the given bounds.
func GridForBounds(bounds image.Rectangle, edge int) Grid {
	return NewGrid(bounds.Dx(), bounds.Dy(), edge)
}

func (g Grid) count(dimension int) int {
	if dimension <= 0 || g.Edge <= 0 {
		return 0
	}
	return CeilDiv(dimension, g.Edge)
}

// Cols returns the number of columns.
func (g Grid) Cols() int {
	return g.count(g.Width)
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return g.count(g.Height)
}

// Len returns the total number of windows.
func (g Grid) Len() int {
	return g.Cols() * g.Rows()
}

// Window returns the ideal (non-clamped) window in column col and row row.
func (g Grid) Window(col, row int) Window {
	x0 := col * g.Edge
	y0 := row * g.Edge
	return Window{Left: x0, Top: y0, Right: x0 + g.Edge, Bottom: y0 + g.Edge}
}

// Iter returns a new iterator over all windows of the grid in row-major
// order, that is left to right within a row and rows from top to bottom.
func (g Grid) Iter() *GridIterator {
	return &GridIterator{grid: g, cols: g.Cols(), rows: g.Rows()}
}

// Walk calls f for each window of the grid in row-major order. It stops at
// the first error and returns it.
func (g Grid) Walk(f func(w Window) error) error {
	it := g.Iter()
	for w, ok := it.Next(); ok; w, ok = it.Next() {
		if err := f(w); err != nil {
			return err
		}
	}
	return nil
}

// Windows returns all windows of the grid in row-major order.
func (g Grid) Windows() []Window {
	res := make([]Window, 0, g.Len())
	it := g.Iter()
	for w, ok := it.Next(); ok; w, ok = it.Next() {
		res = append(res, w)
	}
	return res
}

// GridIterator lazily produces the windows of a grid. It is not safe for
// concurrent use.
type GridIterator struct {
	grid       Grid
	cols, rows int
	// next position
	col, row int
}

// Next returns the next window and true, or an empty window and false if all
// windows have been produced.
func (it *GridIterator) Next() (Window, bool) {
	if it.cols == 0 || it.row >= it.rows {
		return Window{}, false
	}
	w := it.grid.Window(it.col, it.row)
	it.col++
	if it.col == it.cols {
		it.col = 0
		it.row++
	}
	return w, true
}

// Reset restarts the iteration at the first window.
func (it *GridIterator) Reset() {
	it.col, it.row = 0, 0
}

// Position returns the column and row of the window returned by the next call
// to Next.
func (it *GridIterator) Position() (col, row int) {
	return it.col, it.row
}
