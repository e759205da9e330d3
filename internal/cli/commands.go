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

package cli

import (
	"fmt"
	"strconv"

	"github.com/nfnt/resize"
	"github.com/rogfrich/pyzantine"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newPrepareCmd(global *globalOptions) *cobra.Command {
	opts := pyzantine.DefaultPrepareOptions()
	var interP resize.InterpolationFunction
	var formats string
	cmd := &cobra.Command{
		Use:   "prepare <src-dir> <dst-dir>",
		Short: "Crop and scale photos to square tiles",
		Long: `Prepare turns a directory of photos into tiles: each photo is cropped to its
top left square and scaled to edge x edge pixels. The tiles are written as
jpeg files to dst-dir, subdirectories are kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := global.path(args[0])
			if err != nil {
				return err
			}
			dst, err := global.path(args[1])
			if err != nil {
				return err
			}
			filter, err := filterFor(formats)
			if err != nil {
				return err
			}
			opts.Filter = filter
			opts.Resizer = pyzantine.NewNfntResizer(interP)
			opts.Routines = global.routines
			opts.Progress = global.progress("Preparing")
			tiles, err := pyzantine.PrepareLibrary(cmd.Context(), src, dst, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Prepared %d tiles in %s\n", len(tiles), dst)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Edge, "edge", "e", pyzantine.DefaultEdge, "edge length of the tiles in pixels")
	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "search subdirectories")
	cmd.Flags().IntVar(&opts.JPGQuality, "jpeg-quality", pyzantine.DefaultJPGQuality, "jpeg quality of the tiles (1-100)")
	cmd.Flags().StringVar(&formats, "formats", "jpg", "image formats to search (jpg, jpg+png, all)")
	cmd.Flags().Var(newInterpValue(resize.MitchellNetravali, &interP), "interp",
		"interpolation used for scaling, quality 0-5 or name (nearest, bilinear, bicubic, mitchell, lanczos2, lanczos3)")
	return cmd
}

func newIndexCmd(global *globalOptions) *cobra.Command {
	var output, formats string
	var recursive bool
	opts := pyzantine.IndexOptions{}
	cmd := &cobra.Command{
		Use:   "index <tile-dir>",
		Short: "Compute the average color of all tiles",
		Long: `Index computes the average color of each tile in tile-dir and writes the
color index file. The file format depends on the extension of the output file:
.json or .gob.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := global.path(args[0])
			if err != nil {
				return err
			}
			outPath, err := global.path(output)
			if err != nil {
				return err
			}
			filter, err := filterFor(formats)
			if err != nil {
				return err
			}
			if opts.Edge < 0 {
				return &pyzantine.ConfigError{Field: "edge", Reason: fmt.Sprintf("must not be negative, got %d", opts.Edge)}
			}
			opts.Routines = global.routines
			opts.Root = dir
			images, err := pyzantine.FindImages(dir, recursive, filter)
			if err != nil {
				return err
			}
			ids := make([]pyzantine.TileID, len(images))
			for i, img := range images {
				ids[i] = pyzantine.TileID(img)
			}
			opts.Progress = global.progress("Indexing")(len(ids))
			file, err := pyzantine.BuildIndexFile(cmd.Context(), pyzantine.NewFSTileStorage(""), ids, opts)
			if err != nil {
				return err
			}
			if len(file.Entries) == 0 {
				return fmt.Errorf("no tiles found in %s: %w", dir, pyzantine.ErrEmptyIndex)
			}
			if err := file.WriteFile(outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d tiles to %s\n", len(file.Entries), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", pyzantine.DefaultIndexFileName, "index file (.json or .gob)")
	cmd.Flags().IntVarP(&opts.Edge, "edge", "e", pyzantine.DefaultEdge, "edge length the tiles are used for, 0 to average whole tiles")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "search subdirectories")
	cmd.Flags().BoolVar(&opts.SkipInvalid, "skip-invalid", false, "skip tiles that can't be decoded or are too small")
	cmd.Flags().StringVar(&formats, "formats", "jpg", "image formats to search (jpg, jpg+png, all)")
	return cmd
}

func newBuildCmd(global *globalOptions) *cobra.Command {
	cfg := pyzantine.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "build <target> <output>",
		Short: "Create a mosaic",
		Long: `Build divides the target image into square cells of edge x edge pixels and
replaces each cell by the tile whose average color is closest. The output is
written as jpeg or png, depending on its extension.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.TargetPath = args[0]
			cfg.OutputPath = args[1]
			resolved, err := cfg.ResolvePaths(global.workingDir)
			if err != nil {
				return err
			}
			if cfg.TileRoot == "" {
				// tile paths in the index are relative to the working directory
				resolved.TileRoot = global.workingDir
			}
			stats, err := pyzantine.Run(resolved, global.progress("Building"))
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"run":   stats.RunID,
				"cells": stats.Cells,
				"tiles": stats.Tiles,
			}).Debug("Run finished")
			fmt.Fprintf(cmd.OutOrStdout(), "Mosaic saved to %s (%d cells, %d different tiles, %s)\n",
				resolved.OutputPath, stats.Cells, stats.Tiles, stats.Duration)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfg.IndexPath, "index", "i", cfg.IndexPath, "color index file (.json or .gob)")
	cmd.Flags().StringVar(&cfg.TileRoot, "tile-root", "", "directory relative tile paths are resolved against")
	cmd.Flags().IntVarP(&cfg.Edge, "edge", "e", cfg.Edge, "edge length of the cells in pixels")
	cmd.Flags().IntVar(&cfg.JPGQuality, "jpeg-quality", cfg.JPGQuality, "jpeg quality of the output (1-100)")
	cmd.Flags().IntVar(&cfg.CacheSize, "cache", cfg.CacheSize, "number of tiles kept in memory")
	cmd.Flags().Var(newMetricValue(cfg.Metric, &cfg.Metric), "metric", "color metric (euclid, squared)")
	return cmd
}

func newCheckCmd(global *globalOptions) *cobra.Command {
	var indexPath, formats string
	var edge int
	var recursive bool
	cmd := &cobra.Command{
		Use:   "check <tile-dir>",
		Short: "Compare an index file with a tile directory",
		Long: `Check reports tiles in tile-dir that are missing in the index, index entries
without a tile and tiles that are smaller than edge x edge pixels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := global.path(args[0])
			if err != nil {
				return err
			}
			path, err := global.path(indexPath)
			if err != nil {
				return err
			}
			filter, err := filterFor(formats)
			if err != nil {
				return err
			}
			file, err := pyzantine.ReadIndexFile(path)
			if err != nil {
				return err
			}
			images, err := pyzantine.FindImages(dir, recursive, filter)
			if err != nil {
				return err
			}
			ids := make([]pyzantine.TileID, len(images))
			for i, img := range images {
				ids[i] = pyzantine.TileID(img)
			}
			out := cmd.OutOrStdout()
			problems := 0
			if dataErr := file.CheckData(edge); dataErr != nil {
				fmt.Fprintln(out, dataErr)
				problems++
			}
			for _, id := range file.MissingEntries(ids) {
				fmt.Fprintln(out, "not indexed:", id)
				problems++
			}
			for _, id := range file.AdditionalEntries(ids) {
				fmt.Fprintln(out, "no such tile:", id)
				problems++
			}
			small, err := pyzantine.CheckTileSizes(pyzantine.NewFSTileStorage(""), ids, edge)
			if err != nil {
				return err
			}
			for _, id := range small {
				fmt.Fprintln(out, "too small:", id)
				problems++
			}
			if problems > 0 {
				return fmt.Errorf("found %d problems", problems)
			}
			fmt.Fprintf(out, "Index %s is up to date (%d tiles)\n", path, len(file.Entries))
			return nil
		},
	}
	cmd.Flags().StringVarP(&indexPath, "index", "i", pyzantine.DefaultIndexFileName, "color index file (.json or .gob)")
	cmd.Flags().IntVarP(&edge, "edge", "e", pyzantine.DefaultEdge, "edge length of the cells in pixels")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "search subdirectories")
	cmd.Flags().StringVar(&formats, "formats", "jpg", "image formats to search (jpg, jpg+png, all)")
	return cmd
}

func newMatchCmd(global *globalOptions) *cobra.Command {
	var indexPath, metricName string
	var k int
	cmd := &cobra.Command{
		Use:   "match <r> <g> <b>",
		Short: "List the tiles closest to a color",
		Long: `Match prints the k tiles of the index whose average color is closest to the
given color, best match first. The first tile is the one a mosaic cell of
that color is replaced with.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]int, len(args))
			for i, arg := range args {
				v, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid color component %q: %w", arg, err)
				}
				values[i] = v
			}
			c, err := pyzantine.AverageColorFromSlice(values)
			if err != nil {
				return err
			}
			path, err := global.path(indexPath)
			if err != nil {
				return err
			}
			index, _, err := pyzantine.LoadTileIndex(path)
			if err != nil {
				return err
			}
			metric, _ := pyzantine.GetColorMetric(metricName)
			matches, err := index.KNearest(c, k, metric)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range matches {
				fmt.Fprintf(out, "%s\t%v\t%.2f\n", m.ID, m.Color, m.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&indexPath, "index", "i", pyzantine.DefaultIndexFileName, "color index file (.json or .gob)")
	cmd.Flags().IntVarP(&k, "count", "k", 5, "number of tiles to list")
	cmd.Flags().Var(newMetricValue(pyzantine.DefaultMetricName, &metricName), "metric", "color metric (euclid, squared)")
	return cmd
}
