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
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianConsole/pkg/validation"
	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/itemform"
	"github.com/AleutianAI/AleutianConsole/services/console/mediatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/tags"
)

func newTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <itemid>",
		Short: "Show an item's own and inherited tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID := args[0]
			if err := validation.ValidateID(itemID); err != nil {
				return a.fail(err)
			}
			st, closeStore, err := a.openStore()
			if err != nil {
				return a.fail(err)
			}
			defer closeStore()

			host, err := st.HostByItem(cmd.Context(), itemID)
			if err != nil {
				return a.fail(fmt.Errorf("item %s: %w", itemID, err))
			}
			formContext := itemform.ContextHost
			if host.IsTemplate() {
				formContext = itemform.ContextTemplate
			}

			logger := a.logger.Slog()
			builder := itemform.NewBuilder(st, tags.NewResolver(st, st, st, logger), nil, logger)
			data, err := builder.Build(cmd.Context(), itemform.Request{
				Context:           formContext,
				ItemID:            itemID,
				ShowInheritedTags: true,
			})
			if err != nil {
				return a.fail(err)
			}

			a.printer.Title(fmt.Sprintf("%s on %s", data.Form.Name, data.Host.Name))
			rows := make([][]string, 0, len(data.Form.Tags))
			for _, t := range data.Form.Tags {
				if t.Tag == "" && t.Value == "" {
					continue
				}
				rows = append(rows, []string{t.Tag, t.Value, t.Provenance().String(), templateNames(t)})
			}
			a.printer.Table([]string{"TAG", "VALUE", "SOURCE", "TEMPLATES"}, rows)
			return nil
		},
	}
}

// templateNames lists the parent templates of t ordered by id.
func templateNames(t datatypes.MergedTag) string {
	ids := make([]string, 0, len(t.ParentTemplates))
	for id := range t.ParentTemplates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, t.ParentTemplates[id].Name)
	}
	return strings.Join(names, ", ")
}

func newMediaTypesCmd(a *app) *cobra.Command {
	q := mediatypes.DefaultQuery()
	var status string

	cmd := &cobra.Command{
		Use:   "mediatypes",
		Short: "List media types with the actions that use them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch strings.ToLower(status) {
			case "", "any":
				q.Status = mediatypes.StatusAny
			case "enabled":
				q.Status = mediatypes.StatusEnabled
			case "disabled":
				q.Status = mediatypes.StatusDisabled
			default:
				return a.fail(fmt.Errorf("invalid --status %q (want any, enabled or disabled)", status))
			}
			q.SortOrder = strings.ToUpper(q.SortOrder)
			q.RowsPerPage = a.cfg.UI.RowsPerPage

			st, closeStore, err := a.openStore()
			if err != nil {
				return a.fail(err)
			}
			defer closeStore()

			page, err := mediatypes.NewLister(st, a.logger.Slog()).List(cmd.Context(), q)
			if err != nil {
				return a.fail(err)
			}

			a.printer.Title("Media types")
			rows := make([][]string, 0, len(page.Rows))
			for _, r := range page.Rows {
				state := "Enabled"
				if !r.Enabled {
					state = "Disabled"
				}
				actions := make([]string, 0, len(r.Actions))
				for _, act := range r.Actions {
					actions = append(actions, act.Name)
				}
				rows = append(rows, []string{
					r.MediaTypeID, r.Name, r.TypeName, state, strings.Join(actions, ", "), r.Details,
				})
			}
			a.printer.Table([]string{"ID", "NAME", "TYPE", "STATUS", "USED IN ACTIONS", "DETAILS"}, rows)
			if page.Paging.PageCount > 1 {
				a.printer.Title(fmt.Sprintf("Page %d of %d (%d media types)",
					page.Paging.Page, page.Paging.PageCount, page.Paging.Total))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.Name, "name", "", "filter by name substring (case-insensitive)")
	f.StringVar(&status, "status", "any", "filter by status: any, enabled or disabled")
	f.StringVar(&q.Sort, "sort", mediatypes.SortName, "sort field: name or type")
	f.StringVar(&q.SortOrder, "order", mediatypes.OrderAsc, "sort order: asc or desc")
	f.IntVar(&q.Page, "page", 1, "page number")
	return cmd
}
