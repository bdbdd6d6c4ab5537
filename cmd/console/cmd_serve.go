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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianConsole/services/console/config"
	"github.com/AleutianAI/AleutianConsole/services/console/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the console HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := a.logger.Slog()
			reloads := make(chan *config.Config)
			_, err := config.Watch(a.configOptions(cmd),
				func(next *config.Config) {
					select {
					case reloads <- next:
					case <-ctx.Done():
					}
				},
				func(err error) {
					logger.Warn("configuration change rejected", "error", err)
				})
			if err != nil {
				return a.fail(err)
			}

			if err := server.Serve(ctx, a.cfg, logger, reloads); err != nil {
				return a.fail(err)
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("fixture", "", "YAML fixture imported on startup")
	return cmd
}
