// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianConsole/pkg/logging"
	"github.com/AleutianAI/AleutianConsole/pkg/ux"
	"github.com/AleutianAI/AleutianConsole/services/console/config"
	"github.com/AleutianAI/AleutianConsole/services/console/server"
	"github.com/AleutianAI/AleutianConsole/services/console/store"
)

// app is the state shared by all commands of one invocation.
type app struct {
	configFile string
	envFile    string
	output     string

	cfg     *config.Config
	logger  *logging.Logger
	printer *ux.Printer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "console",
		Short: "Monitoring console service and tools",
		Long: `console serves the item edit form, media type list and dashboard
widget field endpoints, and manages the console database from the shell.

The database is opened exclusively: stop "console serve" before running
commands that read or write the same --db directory.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./console.yaml or ~/.aleutian/console.yaml)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading CONSOLE_* overrides")
	pf.StringVar(&a.output, "output", "", "output style: standard, minimal or machine (default detected)")
	pf.String("db", "", "database directory")
	pf.Bool("in-memory", false, "keep the database in memory")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.Bool("log-json", false, "write console logs as JSON")

	rootCmd.AddCommand(
		newServeCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newTagsCmd(a),
		newMediaTypesCmd(a),
	)
	return rootCmd
}

// setup loads the configuration and creates the logger and printer.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := ux.DetectPersonality(os.Stdout)
	if a.output != "" {
		level = ux.ParsePersonalityLevel(a.output)
	}
	a.printer = &ux.Printer{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr(), Level: level}

	cfg, err := config.Load(a.configOptions(cmd))
	if err != nil {
		a.printer.Error(err.Error())
		return err
	}
	a.cfg = cfg

	logLevel, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logger = logging.New(logging.Config{
		Level:   logLevel,
		LogDir:  cfg.Log.Dir,
		Service: "console",
		JSON:    cfg.Log.JSON,
		Output:  cmd.ErrOrStderr(),
	})
	slog.SetDefault(a.logger.Slog())
	return nil
}

// configOptions locates the configuration the way the root flags ask.
func (a *app) configOptions(cmd *cobra.Command) config.Options {
	return config.Options{
		File:    a.configFile,
		EnvFile: a.envFile,
		Flags:   cmd.Flags(),
	}
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

// openStore opens the configured database. The returned func closes it.
func (a *app) openStore() (*store.Store, func(), error) {
	db, st, err := server.OpenStore(a.cfg.Storage, a.logger.Slog())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return st, func() {
		if cerr := db.Close(); cerr != nil {
			a.logger.Error("close database", "error", cerr)
		}
	}, nil
}

// fail reports err to the user and returns it for cobra.
func (a *app) fail(err error) error {
	a.printer.Error(err.Error())
	return err
}
