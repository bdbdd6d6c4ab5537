// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
)

func widgetKey(dashboardID, widgetID string) string {
	return prefixWidget + dashboardID + "/" + widgetID
}

// PutWidget creates or replaces a dashboard widget.
func (s *Store) PutWidget(ctx context.Context, w datatypes.Widget) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return putJSON(txn, widgetKey(w.DashboardID, w.WidgetID), w)
	})
}

// DeleteWidget removes a widget from a dashboard.
func (s *Store) DeleteWidget(ctx context.Context, dashboardID, widgetID string) error {
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return deleteKey(txn, widgetKey(dashboardID, widgetID))
	})
}

// DashboardWidgets returns the widgets of one dashboard ordered by widget id.
func (s *Store) DashboardWidgets(ctx context.Context, dashboardID string) ([]datatypes.Widget, error) {
	var widgets []datatypes.Widget
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		widgets, err = scanJSON[datatypes.Widget](txn, prefixWidget+dashboardID+"/")
		return err
	})
	if err != nil {
		return nil, err
	}
	sortByID(widgets, func(w datatypes.Widget) string { return w.WidgetID })
	return widgets, nil
}

// ReferableWidgets returns the widgets on a dashboard that can feed the given
// data type to the widget being edited.
//
// # Description
//
// The edited widget itself is excluded, as is any widget that does not
// broadcast dataType. Order follows DashboardWidgets. Nothing is cached:
// every call reads the current dashboard.
//
// # Inputs
//
//   - dashboardID: Dashboard being edited.
//   - dataType: Accepted data type of the field, e.g. "_hostids".
//   - editingWidgetID: Widget whose form is open. Empty for a new widget.
func (s *Store) ReferableWidgets(ctx context.Context, dashboardID, dataType, editingWidgetID string) ([]datatypes.Widget, error) {
	widgets, err := s.DashboardWidgets(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	out := widgets[:0]
	for _, w := range widgets {
		if w.WidgetID == editingWidgetID || !w.Produces(dataType) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// DashboardView scopes widget lookups to one dashboard and the widget being
// edited on it.
type DashboardView struct {
	store           *Store
	dashboardID     string
	editingWidgetID string
}

// Dashboard returns a view of dashboardID as seen from the form of
// editingWidgetID.
func (s *Store) Dashboard(dashboardID, editingWidgetID string) *DashboardView {
	return &DashboardView{store: s, dashboardID: dashboardID, editingWidgetID: editingWidgetID}
}

// ReferableWidgets returns the widgets of the dashboard that broadcast
// dataType, excluding the edited widget.
func (v *DashboardView) ReferableWidgets(ctx context.Context, dataType string) ([]datatypes.Widget, error) {
	return v.store.ReferableWidgets(ctx, v.dashboardID, dataType, v.editingWidgetID)
}
