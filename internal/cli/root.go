// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

// Package cli implements the triprec command-line client. Every command
// builds an engine from the configured CSV, answers one query and exits.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomtom215/triprec/internal/config"
	"github.com/tomtom215/triprec/internal/database"
	"github.com/tomtom215/triprec/internal/logging"
	"github.com/tomtom215/triprec/internal/recommend"
)

// EngineLoader builds the engine a command queries.
type EngineLoader func(ctx context.Context, opts *Options) (*recommend.Engine, error)

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	CSVPath    string
	JSON       bool
	NoColor    bool
	Verbose    bool
}

type app struct {
	opts   Options
	load   EngineLoader
	stdout io.Writer
}

// NewRootCommand builds the triprec command tree. A nil loader reads the
// CSV named by the configuration.
func NewRootCommand(load EngineLoader) *cobra.Command {
	a := &app{load: load}
	if a.load == nil {
		a.load = loadFromCSV
	}

	root := &cobra.Command{
		Use:           "triprec",
		Short:         "triprec recommends shuttle trips similar to a trip or a preference",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.stdout = cmd.OutOrStdout()
			if a.opts.NoColor {
				color.NoColor = true
			}
			level := "warn"
			if a.opts.Verbose {
				level = "debug"
			}
			logging.Init(logging.Config{Level: level, Format: "console", Output: cmd.ErrOrStderr()})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.ConfigPath, "config", "c", "", "config file (default: config.yaml search path)")
	flags.StringVar(&a.opts.CSVPath, "csv", "", "trip CSV, overrides dataset.csv_path")
	flags.BoolVar(&a.opts.JSON, "json", false, "print JSON instead of a table")
	flags.BoolVar(&a.opts.NoColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "log build progress")

	root.AddCommand(a.similarCommand(), a.preferCommand(), a.modelCommand())
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCommand(nil)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), color.RedString("error:"), err)
		return 1
	}
	return 0
}

// loadFromCSV loads configuration, imports the CSV into an in-memory DuckDB
// and builds an engine from it.
func loadFromCSV(ctx context.Context, opts *Options) (*recommend.Engine, error) {
	if opts.ConfigPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, opts.ConfigPath); err != nil {
			return nil, err
		}
	}
	if opts.CSVPath != "" {
		if err := os.Setenv("TRIPS_CSV_PATH", opts.CSVPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// The server may hold the configured database file open.
	dbCfg := cfg.Database
	dbCfg.Path = ""
	db, err := database.New(&dbCfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("closing database")
		}
	}()

	src := database.NewCSVSource(db, cfg.Dataset.CSVPath, cfg.Dataset.Delimiter)
	rows, err := src.LoadTrips(ctx)
	if err != nil {
		return nil, err
	}
	return recommend.Build(ctx, rows, cfg.Recommend.EngineConfig(),
		recommend.BuildOptions{Source: src.Path()}, logging.WithComponent("recommend"))
}

func (a *app) engine(cmd *cobra.Command) (*recommend.Engine, error) {
	return a.load(cmd.Context(), &a.opts)
}
