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
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	// register decoders
	_ "image/gif"

	_ "golang.org/x/image/webp"
)

// DefaultJPGQuality is the jpeg quality used for mosaics and prepared tiles.
const DefaultJPGQuality = 100

// LoadImage opens and decodes an image. All errors (open or decode) are
// returned as *DecodeError.
func LoadImage(path string) (image.Image, error) {
	r, openErr := os.Open(path)
	if openErr != nil {
		return nil, &DecodeError{Path: path, Err: openErr}
	}
	defer r.Close()
	img, _, decodeErr := image.Decode(r)
	if decodeErr != nil {
		return nil, &DecodeError{Path: path, Err: decodeErr}
	}
	return img, nil
}

// LoadImageConfig returns the color model and dimensions of an image. Errors
// are returned as *DecodeError.
func LoadImageConfig(path string) (image.Config, error) {
	r, openErr := os.Open(path)
	if openErr != nil {
		return image.Config{}, &DecodeError{Path: path, Err: openErr}
	}
	defer r.Close()
	config, _, decodeErr := image.DecodeConfig(r)
	if decodeErr != nil {
		return image.Config{}, &DecodeError{Path: path, Err: decodeErr}
	}
	return config, nil
}

// CanSave reports whether SaveImage supports the extension of path.
func CanSave(path string) bool {
	return JPGAndPNG(filepath.Ext(path))
}

// SaveImage encodes img depending on the extension of path: jpeg (with the
// given quality) for .jpg and .jpeg, png for .png.
func SaveImage(path string, img image.Image, jpgQuality int) error {
	ext := filepath.Ext(path)
	if !CanSave(path) {
		return fmt.Errorf("unsupported file type %q, expected .jpg or .png", ext)
	}
	outFile, outErr := os.Create(path)
	if outErr != nil {
		return outErr
	}
	var encErr error
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		encErr = jpeg.Encode(outFile, img, &jpeg.Options{Quality: jpgQuality})
	default:
		encErr = png.Encode(outFile, img)
	}
	closeErr := outFile.Close()
	if encErr != nil {
		return fmt.Errorf("encoding %q: %w", path, encErr)
	}
	return closeErr
}
