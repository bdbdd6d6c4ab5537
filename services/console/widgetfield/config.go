// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package widgetfield manages the selection of a dashboard widget form field
// that accepts either plain entities or a typed reference to another
// widget's output or to the dashboard.
//
// # Description
//
// A field's selection is either a list of plain entities picked from the
// default source, or exactly one typed reference. Selecting one kind clears
// the other.
//
// Decisions are made by pure functions over State (SelectTypedReference,
// SelectSuggested, ModifySuggestedList, BeforeAdd, Remove). Apply renders a
// State onto a Control. Selector ties both together for one field and is
// driven by explicit lifecycle calls from the owning form.
//
// # Thread Safety
//
// The pure functions are safe for concurrent use. A Selector is owned by one
// form field and must not be shared between goroutines.
package widgetfield

import (
	"fmt"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
)

// Labels are the singular and plural names of the field's objects, e.g.
// "Host" and "Hosts".
type Labels struct {
	Object  string `json:"object"`
	Objects string `json:"objects"`
}

// FieldConfig is fixed when the field is constructed.
type FieldConfig struct {
	// FieldName is the form field name without any suffix, e.g. "hostids".
	FieldName string `json:"field_name" validate:"required"`

	// InType is the data type the field accepts from references, e.g.
	// "_hostids".
	InType string `json:"in_type" validate:"required,excludes=."`

	Labels Labels `json:"object_labels"`

	// SelectedLimit is the control's capacity in plain mode. 0 means
	// unlimited, 1 means single select.
	SelectedLimit int `json:"selected_limit" validate:"gte=0"`

	// DefaultPrevented hides the plain entity picker; only optional
	// sources are offered.
	DefaultPrevented bool `json:"default_prevented"`

	WidgetAccepted    bool `json:"widget_accepted"`
	DashboardAccepted bool `json:"dashboard_accepted"`
}

// Validate checks the configuration.
func (c *FieldConfig) Validate() error {
	return datatypes.Validate(c)
}

// IsMultiple reports whether the field accepts more than one plain entity.
func (c FieldConfig) IsMultiple() bool {
	return c.SelectedLimit != 1
}

// HasOptionalSources reports whether the widget and dashboard entries are
// offered next to (or instead of) the default picker.
func (c FieldConfig) HasOptionalSources() bool {
	return c.WidgetAccepted && (!c.DefaultPrevented || c.DashboardAccepted)
}

// PlainName is the form submission name in plain mode.
func (c FieldConfig) PlainName() string {
	if c.IsMultiple() {
		return c.FieldName + "[]"
	}
	return c.FieldName
}

// ReferenceName is the form submission name while a typed reference is
// selected.
func (c FieldConfig) ReferenceName() string {
	return fmt.Sprintf("%s[%s]", c.FieldName, datatypes.ForeignReferenceKey)
}

// DashboardToken is the typed reference token of the dashboard for this
// field's data type.
func (c FieldConfig) DashboardToken() string {
	return datatypes.DashboardReference(c.InType).Token()
}

// Translator localises user visible words.
type Translator func(string) string

// Identity returns its input unchanged.
func Identity(s string) string { return s }

func (t Translator) t(s string) string {
	if t == nil {
		return s
	}
	return t(s)
}

// Words passed through the Translator.
const (
	WordDashboard     = "Dashboard"
	WordWidget        = "Widget"
	WordWidgets       = "Widgets"
	HintDashboard     = "Dashboard is used as data source."
	HintAnotherWidget = "Another widget is used as data source."
)
