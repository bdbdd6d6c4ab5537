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
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianConsole/pkg/validation"
	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/server"
	"github.com/AleutianAI/AleutianConsole/services/console/store"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import hosts, items, media types, actions and widgets from a YAML fixture",
		Long: `Import validates the whole fixture before writing anything. Records
that already exist with the same id are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := a.openStore()
			if err != nil {
				return a.fail(err)
			}
			defer closeStore()

			stats, err := server.ImportFile(cmd.Context(), st, args[0], nil)
			if err != nil {
				return a.fail(err)
			}

			a.printer.Title("Imported " + args[0])
			a.printer.Table([]string{"KIND", "RECORDS"}, [][]string{
				{"hosts", strconv.Itoa(stats.Hosts)},
				{"items", strconv.Itoa(stats.Items)},
				{"valuemaps", strconv.Itoa(stats.ValueMaps)},
				{"mediatypes", strconv.Itoa(stats.MediaTypes)},
				{"actions", strconv.Itoa(stats.Actions)},
				{"widgets", strconv.Itoa(stats.Widgets)},
			})
			a.printer.Success(fmt.Sprintf("%d records imported", stats.Total()))
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export records as YAML fixtures",
	}

	var (
		ids  []string
		file string
	)
	mediaTypesCmd := &cobra.Command{
		Use:   "mediatypes",
		Short: "Export media types (all, or those given with --ids)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, closeStore, err := a.openStore()
			if err != nil {
				return a.fail(err)
			}
			defer closeStore()

			var list []datatypes.MediaType
			if len(ids) == 0 {
				list, err = st.ListMediaTypes(cmd.Context())
			} else {
				clean, verr := validation.SanitizeIDs(ids)
				if verr != nil {
					return a.fail(verr)
				}
				list, err = st.GetMediaTypes(cmd.Context(), clean)
			}
			if err != nil {
				return a.fail(err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if file != "" {
				f, err := os.Create(file)
				if err != nil {
					return a.fail(err)
				}
				defer f.Close()
				w = f
			}
			if err := store.ExportMediaTypes(w, list); err != nil {
				return a.fail(err)
			}
			if file != "" {
				a.printer.Success(fmt.Sprintf("%d media types written to %s", len(list), file))
			}
			return nil
		},
	}
	mediaTypesCmd.Flags().StringSliceVar(&ids, "ids", nil, "media type ids to export")
	mediaTypesCmd.Flags().StringVarP(&file, "file", "f", "", "write to file instead of stdout")

	exportCmd.AddCommand(mediaTypesCmd)
	return exportCmd
}
