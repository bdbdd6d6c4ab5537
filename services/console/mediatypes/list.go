// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package mediatypes builds the media type list page.
//
// # Description
//
// The list is filtered by name and status, sorted by name or type, paged,
// and decorated with the details column, the actions that use each media
// type and the status toggle target. Build is pure; Lister wires it to the
// store.
package mediatypes

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
)

// Status filter values.
const (
	StatusAny      = -1
	StatusEnabled  = datatypes.MediaTypeStatusActive
	StatusDisabled = datatypes.MediaTypeStatusDisabled
)

// Sort fields and orders.
const (
	SortName  = "name"
	SortType  = "type"
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// DefaultRowsPerPage is used when Query.RowsPerPage is not positive.
const DefaultRowsPerPage = 50

// Status toggle actions.
const (
	ActionEnable  = "mediatype.enable"
	ActionDisable = "mediatype.disable"
)

// Query selects and orders the media types of one list page.
type Query struct {
	Name        string `form:"filter_name" json:"filter_name"`
	Status      int    `form:"filter_status,default=-1" json:"filter_status" validate:"oneof=-1 0 1"`
	Sort        string `form:"sort,default=name" json:"sort" validate:"omitempty,oneof=name type"`
	SortOrder   string `form:"sortorder,default=ASC" json:"sortorder" validate:"omitempty,oneof=ASC DESC"`
	Page        int    `form:"page,default=1" json:"page" validate:"gte=0"`
	RowsPerPage int    `form:"-" json:"-"`
}

// DefaultQuery returns the query of an unfiltered first page.
func DefaultQuery() Query {
	return Query{Status: StatusAny, Sort: SortName, SortOrder: OrderAsc, Page: 1}
}

// ActionLink is one entry of the "Used in actions" column.
type ActionLink struct {
	ActionID    string `json:"actionid"`
	Name        string `json:"name"`
	EventSource int    `json:"eventsource"`
}

// Row is one rendered media type.
type Row struct {
	MediaTypeID  string       `json:"mediatypeid"`
	Name         string       `json:"name"`
	Type         int          `json:"type"`
	TypeName     string       `json:"type_name"`
	Status       int          `json:"status"`
	Enabled      bool         `json:"enabled"`
	StatusAction string       `json:"status_action"`
	Actions      []ActionLink `json:"actions"`
	Details      string       `json:"details"`
	TestEnabled  bool         `json:"test_enabled"`
}

// Paging describes the current page.
type Paging struct {
	Page        int `json:"page"`
	PageCount   int `json:"page_count"`
	RowsPerPage int `json:"rows_per_page"`
	Total       int `json:"total"`
}

// Page is the media type list view model.
type Page struct {
	Query  Query  `json:"filter"`
	Rows   []Row  `json:"mediatypes"`
	Paging Paging `json:"paging"`
}

// Details returns the details column of a media type.
func Details(mt datatypes.MediaType) string {
	switch mt.Type {
	case datatypes.MediaTypeEmail:
		if mt.Provider == datatypes.EmailProviderSMTP {
			return fmt.Sprintf(`SMTP server: "%s", SMTP helo: "%s", email: "%s"`,
				mt.SMTPServer, mt.SMTPHelo, mt.SMTPEmail)
		}
		return fmt.Sprintf(`SMTP server: "%s", email: "%s"`, mt.SMTPServer, mt.SMTPEmail)
	case datatypes.MediaTypeExec:
		return fmt.Sprintf(`Script name: "%s"`, mt.ExecPath)
	case datatypes.MediaTypeSMS:
		return fmt.Sprintf(`GSM modem: "%s"`, mt.GSMModem)
	default:
		return ""
	}
}

// StatusAction returns the action that toggles the status of mt.
func StatusAction(mt datatypes.MediaType) string {
	if mt.Status == datatypes.MediaTypeStatusDisabled {
		return ActionEnable
	}
	return ActionDisable
}

// Build filters, sorts and pages mediaTypes.
//
// # Inputs
//
//   - q: Filter, sort and paging. Zero sort fields fall back to name ASC.
//   - mediaTypes: All media types.
//   - actions: Actions keyed by media type id, each list sorted by name.
//
// # Outputs
//
//   - Page: The requested page. A page past the end is clamped to the last
//     page.
func Build(q Query, mediaTypes []datatypes.MediaType, actions map[string][]datatypes.Action) Page {
	if q.Sort == "" {
		q.Sort = SortName
	}
	if q.SortOrder == "" {
		q.SortOrder = OrderAsc
	}
	if q.RowsPerPage <= 0 {
		q.RowsPerPage = DefaultRowsPerPage
	}

	needle := strings.ToLower(strings.TrimSpace(q.Name))
	filtered := make([]datatypes.MediaType, 0, len(mediaTypes))
	for _, mt := range mediaTypes {
		if needle != "" && !strings.Contains(strings.ToLower(mt.Name), needle) {
			continue
		}
		if q.Status != StatusAny && mt.Status != q.Status {
			continue
		}
		filtered = append(filtered, mt)
	}

	sortMediaTypes(filtered, q.Sort, q.SortOrder == OrderDesc)

	total := len(filtered)
	pageCount := (total + q.RowsPerPage - 1) / q.RowsPerPage
	if pageCount == 0 {
		pageCount = 1
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > pageCount {
		q.Page = pageCount
	}
	start := (q.Page - 1) * q.RowsPerPage
	end := min(start+q.RowsPerPage, total)

	rows := make([]Row, 0, end-start)
	for _, mt := range filtered[start:end] {
		rows = append(rows, newRow(mt, actions[mt.MediaTypeID]))
	}

	return Page{
		Query: q,
		Rows:  rows,
		Paging: Paging{
			Page:        q.Page,
			PageCount:   pageCount,
			RowsPerPage: q.RowsPerPage,
			Total:       total,
		},
	}
}

func newRow(mt datatypes.MediaType, actions []datatypes.Action) Row {
	links := make([]ActionLink, 0, len(actions))
	for _, a := range actions {
		links = append(links, ActionLink{ActionID: a.ActionID, Name: a.Name, EventSource: a.EventSource})
	}
	enabled := mt.Status == datatypes.MediaTypeStatusActive
	return Row{
		MediaTypeID:  mt.MediaTypeID,
		Name:         mt.Name,
		Type:         mt.Type,
		TypeName:     datatypes.MediaTypeName(mt.Type),
		Status:       mt.Status,
		Enabled:      enabled,
		StatusAction: StatusAction(mt),
		Actions:      links,
		Details:      Details(mt),
		TestEnabled:  enabled,
	}
}

// sortMediaTypes orders by the sort field, breaking ties by name and then
// id so that paging is stable.
func sortMediaTypes(list []datatypes.MediaType, field string, desc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if field == SortType && a.Type != b.Type {
			if desc {
				return a.Type > b.Type
			}
			return a.Type < b.Type
		}
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			if desc && field == SortName {
				return an > bn
			}
			return an < bn
		}
		return a.MediaTypeID < b.MediaTypeID
	})
}

// Source is the data the list reads.
type Source interface {
	ListMediaTypes(ctx context.Context) ([]datatypes.MediaType, error)
	ActionsByMediaType(ctx context.Context) (map[string][]datatypes.Action, error)
}

// Lister loads and builds list pages.
type Lister struct {
	source Source
	logger *slog.Logger
}

// NewLister creates a Lister. logger may be nil.
func NewLister(source Source, logger *slog.Logger) *Lister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lister{source: source, logger: logger.With("component", "mediatypes")}
}

// List validates q and builds the requested page.
func (l *Lister) List(ctx context.Context, q Query) (Page, error) {
	if err := datatypes.Validate(&q); err != nil {
		return Page{}, err
	}
	all, err := l.source.ListMediaTypes(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("list media types: %w", err)
	}
	actions, err := l.source.ActionsByMediaType(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("list actions: %w", err)
	}
	page := Build(q, all, actions)
	l.logger.Debug("media type list built",
		"total", page.Paging.Total,
		"page", page.Paging.Page,
		"rows", len(page.Rows))
	return page, nil
}
