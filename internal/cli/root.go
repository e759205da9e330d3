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

// Package cli provides the command-line interface for pyzantine.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rogfrich/pyzantine"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// globalOptions are the flags shared by all commands.
type globalOptions struct {
	verbose  bool
	quiet    bool
	routines int
	// workingDir is used to resolve relative paths, defaults to the current
	// working directory.
	workingDir string
	// terminal is true if stderr is a terminal.
	terminal bool
	errOut   io.Writer
}

// NewRootCmd returns the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{errOut: os.Stderr}
	rootCmd := &cobra.Command{
		Use:   "pyzantine",
		Short: "Create photo mosaics",
		Long: `pyzantine creates photo mosaics: a target image is divided into square cells
and each cell is replaced by the tile image whose average color is closest.

A typical workflow:
  # crop and scale your photos to 50x50 tiles
  pyzantine prepare ~/Pictures/holiday tiles --edge 50

  # compute the average color of each tile
  pyzantine index tiles --output source_images.json

  # create the mosaic
  pyzantine build portrait.jpg mosaic.jpg --index source_images.json --edge 50`,
		Version:      pyzantine.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().IntVar(&opts.routines, "routines", 4, "number of images processed concurrently")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPrepareCmd(opts))
	rootCmd.AddCommand(newIndexCmd(opts))
	rootCmd.AddCommand(newBuildCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newMatchCmd(opts))
	return rootCmd
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (opts *globalOptions) setup() error {
	if opts.verbose && opts.quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}
	if opts.routines <= 0 {
		return &pyzantine.ConfigError{Field: "routines", Reason: fmt.Sprintf("must be ≥ 1, got %d", opts.routines)}
	}
	if opts.workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		opts.workingDir = wd
	}
	opts.terminal = term.IsTerminal(int(os.Stderr.Fd()))
	setupLogging(opts)
	return nil
}

func setupLogging(opts *globalOptions) {
	log.SetOutput(opts.errOut)
	log.SetFormatter(&log.TextFormatter{
		DisableColors: !opts.terminal,
		FullTimestamp: true,
	})
	switch {
	case opts.verbose:
		log.SetLevel(log.DebugLevel)
	case opts.quiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// progress returns the progress function for total items. On a terminal
// progress is printed directly, otherwise it is logged.
func (opts *globalOptions) progress(prefix string) pyzantine.ProgressFactory {
	return func(total int) pyzantine.ProgressFunc {
		step := pyzantine.ProgressStep(total)
		switch {
		case opts.quiet:
			return pyzantine.ProgressIgnore
		case opts.terminal:
			return pyzantine.StdProgressFunc(opts.errOut, prefix, total, step)
		default:
			return pyzantine.LoggerProgressFunc(prefix, total, step)
		}
	}
}

func (opts *globalOptions) path(p string) (string, error) {
	return pyzantine.GetPath(opts.workingDir, p)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pyzantine %s\n", pyzantine.Version)
		},
	}
}
