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

// AverageColor descibes the average of several RGB colors.
// Each component is the arithmetic mean truncated to an integer.
type AverageColor RGB

// NewAverageColor returns a new average color.
func NewAverageColor(r, g, b uint8) AverageColor {
	return AverageColor{R: r, G: g, B: b}
}

// ComputeAverageColor computes the average color of an image. The mean is
// truncated, not rounded, for each component.
// The average of an empty image is black.
func ComputeAverageColor(img image.Image) AverageColor {
	bounds := img.Bounds()

	// don't do anything for empty images
	if bounds.Empty() {
		return AverageColor{}
	}
	// fast path for the buffers we create ourselves
	if rgba, ok := img.(*image.RGBA); ok {
		return averageRGBA(rgba)
	}
	// just to be sure we use big integers, depending on the image size we might
	// get problems
	var r, g, b uint64
	numPixels := uint64(bounds.Dx() * bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// convert to internal rgb representation
			rgb := ConvertRGB(img.At(x, y))
			r += uint64(rgb.R)
			g += uint64(rgb.G)
			b += uint64(rgb.B)
		}
	}
	return AverageColor{R: uint8(r / numPixels), G: uint8(g / numPixels), B: uint8(b / numPixels)}
}

func averageRGBA(img *image.RGBA) AverageColor {
	bounds := img.Bounds()
	var r, g, b uint64
	numPixels := uint64(bounds.Dx() * bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		offset := img.PixOffset(bounds.Min.X, y)
		row := img.Pix[offset : offset+4*bounds.Dx()]
		for i := 0; i < len(row); i += 4 {
			r += uint64(row[i])
			g += uint64(row[i+1])
			b += uint64(row[i+2])
		}
	}
	return AverageColor{R: uint8(r / numPixels), G: uint8(g / numPixels), B: uint8(b / numPixels)}
}

// Dist returns the distance between the two average colors given the color
// metric.
func (c AverageColor) Dist(other AverageColor, metric ColorMetric) float64 {
	return metric(c, other)
}

// Slice returns the components as a slice [R, G, B]. This is the format used
// in index files.
func (c AverageColor) Slice() []int {
	return []int{int(c.R), int(c.G), int(c.B)}
}

// AverageColorFromSlice converts an [R, G, B] triple as stored in index files.
// Each value must be between 0 and 255.
func AverageColorFromSlice(values []int) (AverageColor, error) {
	if len(values) != 3 {
		return AverageColor{}, fmt.Errorf("average color must have 3 components, got %d", len(values))
	}
	for _, v := range values {
		if v < 0 || v > 255 {
			return AverageColor{}, fmt.Errorf("color component %d out of range [0, 255]", v)
		}
	}
	return AverageColor{R: uint8(values[0]), G: uint8(values[1]), B: uint8(values[2])}, nil
}

func (c AverageColor) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}
