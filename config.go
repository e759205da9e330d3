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
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// DefaultEdge is the default edge length (in pixels) of tiles and cells.
const DefaultEdge = 50

// Config contains all settings for creating a mosaic.
type Config struct {
	// Edge is the edge length of the cells and the (minimal) edge length of
	// the tiles.
	Edge int
	// IndexPath is the path of the color index file.
	IndexPath string
	// TileRoot is used to resolve relative tile paths from the index, if
	// empty they're relative to the working directory.
	TileRoot string
	// TargetPath is the image the mosaic is created for.
	TargetPath string
	// OutputPath is the file the mosaic is written to, must be .jpg or .png.
	OutputPath string
	// JPGQuality is the quality used when writing jpeg files (1 to 100).
	JPGQuality int
	// CacheSize is the number of tiles kept in memory.
	CacheSize int
	// Metric is the name of a registered color metric.
	Metric string
}

// DefaultConfig returns a config with all non-path settings set to their
// defaults.
func DefaultConfig() Config {
	return Config{
		Edge:       DefaultEdge,
		IndexPath:  DefaultIndexFileName,
		JPGQuality: DefaultJPGQuality,
		CacheSize:  ImageCacheSize,
		Metric:     DefaultMetricName,
	}
}

// validateBuild checks the settings required to compose a mosaic in memory.
func (c Config) validateBuild() error {
	if c.Edge <= 0 {
		return &ConfigError{Field: "edge", Reason: fmt.Sprintf("must be a positive integer, got %d", c.Edge)}
	}
	if c.CacheSize <= 0 {
		return &ConfigError{Field: "cache", Reason: fmt.Sprintf("must be ≥ 1, got %d", c.CacheSize)}
	}
	if _, ok := GetColorMetric(c.Metric); !ok {
		return &ConfigError{Field: "metric", Reason: fmt.Sprintf("unknown metric %q, available: %v", c.Metric, GetColorMetricNames())}
	}
	return nil
}

// Validate checks all settings. The returned error is a *ConfigError.
func (c Config) Validate() error {
	if err := c.validateBuild(); err != nil {
		return err
	}
	switch {
	case c.IndexPath == "":
		return &ConfigError{Field: "index", Reason: "no index file given"}
	case c.TargetPath == "":
		return &ConfigError{Field: "target", Reason: "no target image given"}
	case c.OutputPath == "":
		return &ConfigError{Field: "output", Reason: "no output file given"}
	case !CanSave(c.OutputPath):
		return &ConfigError{Field: "output", Reason: fmt.Sprintf("unsupported file type %q, expected .jpg or .png", filepath.Ext(c.OutputPath))}
	case c.JPGQuality < 1 || c.JPGQuality > 100:
		return &ConfigError{Field: "jpeg-quality", Reason: fmt.Sprintf("must be between 1 and 100, got %d", c.JPGQuality)}
	}
	return nil
}

// ResolvePaths returns a copy of the config with all paths replaced by
// absolute paths, see GetPath.
func (c Config) ResolvePaths(workingDir string) (Config, error) {
	fields := []*string{&c.IndexPath, &c.TileRoot, &c.TargetPath, &c.OutputPath}
	for _, field := range fields {
		if *field == "" {
			continue
		}
		resolved, err := GetPath(workingDir, *field)
		if err != nil {
			return c, err
		}
		*field = resolved
	}
	return c, nil
}

// GetPath returns the absolute path given some other path.
// The idea is the following: If the user inputs a path we have two cases:
// The user used an absolute path, in this case we use this absolute path.
// If it is a relative path we join the working directory with this path
// and thus retrieve the absolute path we work on.
//
// The home directory can be used like on Unix: ~/Pictures is the Pictures
// directory in the home directory of the user.
func GetPath(workingDir, path string) (string, error) {
	// first extend with homedir
	res, pathErr := homedir.Expand(path)
	if pathErr != nil {
		return "", pathErr
	}
	if !filepath.IsAbs(res) {
		res = filepath.Join(workingDir, res)
	}
	return filepath.Abs(res)
}
