// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package widgetfield

import (
	"context"
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
)

// WidgetRegistry lists the widgets on the editing surface that can feed a
// data type. The widget being edited is never included.
type WidgetRegistry interface {
	ReferableWidgets(ctx context.Context, dataType string) ([]datatypes.Widget, error)
}

// GetWidgets queries the registry for the widgets that can feed the field.
//
// Every call goes to the registry, so widgets added, removed or renamed
// since the previous call are reflected. Each widget is returned with its
// typed reference token as ID and its header name as Name, in registry
// order.
func GetWidgets(ctx context.Context, registry WidgetRegistry, cfg FieldConfig) ([]Entity, error) {
	if registry == nil {
		return nil, nil
	}
	widgets, err := registry.ReferableWidgets(ctx, cfg.InType)
	if err != nil {
		return nil, fmt.Errorf("list referable widgets: %w", err)
	}
	out := make([]Entity, 0, len(widgets))
	for _, w := range widgets {
		ref := datatypes.TypedReference{Reference: w.Reference, Type: cfg.InType}
		out = append(out, Entity{ID: ref.Token(), Name: w.HeaderName()})
	}
	return out, nil
}

// Suggestion is one row of the suggestion list: either a group header
// (GroupLabel set) or an entity.
type Suggestion struct {
	GroupLabel string `json:"group_label,omitempty"`
	Entity
}

// IsGroup reports whether the row is a group header.
func (s Suggestion) IsGroup() bool {
	return s.GroupLabel != ""
}

// ModifySuggestedList builds the suggestion list shown while searching.
//
// # Description
//
// Groups are emitted in a fixed order:
//
//  1. The dashboard entry, when the dashboard is accepted and the search
//     text occurs in the word "Dashboard".
//  2. A "Widgets" header followed by every referable widget whose name
//     contains the search text, when widgets are accepted and any match.
//  3. A header with the plural object label followed by the default
//     entities unchanged, when the default source is offered and there are
//     default entities.
//
// Matching is case-insensitive. Widget order is the registry order.
//
// # Inputs
//
//   - cfg: Field configuration.
//   - search: Current search text.
//   - defaults: Entities found by the default source for search.
//   - widgets: Current referable widgets, as returned by GetWidgets.
//   - tr: Translator for the fixed words.
func ModifySuggestedList(cfg FieldConfig, search string, defaults, widgets []Entity, tr Translator) []Suggestion {
	needle := strings.ToLower(search)
	var out []Suggestion

	if cfg.DashboardAccepted {
		word := tr.t(WordDashboard)
		if strings.Contains(strings.ToLower(word), needle) {
			out = append(out, Suggestion{Entity: Entity{
				ID:     cfg.DashboardToken(),
				Name:   word,
				Source: SourceDashboard,
			}})
		}
	}

	if cfg.WidgetAccepted {
		var matched []Suggestion
		for _, w := range widgets {
			if strings.Contains(strings.ToLower(w.Name), needle) {
				matched = append(matched, Suggestion{Entity: Entity{ID: w.ID, Name: w.Name, Source: SourceWidget}})
			}
		}
		if len(matched) > 0 {
			out = append(out, Suggestion{GroupLabel: tr.t(WordWidgets)})
			out = append(out, matched...)
		}
	}

	if !cfg.DefaultPrevented && len(defaults) > 0 {
		out = append(out, Suggestion{GroupLabel: cfg.Labels.Objects})
		for _, e := range defaults {
			out = append(out, Suggestion{Entity: e})
		}
	}

	return out
}

// Action is what a menu entry or the select button does.
type Action string

const (
	ActionNone          Action = ""
	ActionDefaultPopup  Action = "default_popup"
	ActionWidgetPopup   Action = "widget_popup"
	ActionDashboardLink Action = "dashboard"
)

// OptionalSelect is an entry of the control's "add from" menu.
type OptionalSelect struct {
	Label  string `json:"label"`
	Action Action `json:"action"`
}

// OptionalSelects lists the "add from" menu entries. The menu is empty
// unless the field has optional sources.
func OptionalSelects(cfg FieldConfig, tr Translator) []OptionalSelect {
	if !cfg.HasOptionalSources() {
		return nil
	}
	var out []OptionalSelect
	if !cfg.DefaultPrevented {
		label := cfg.Labels.Object
		if cfg.IsMultiple() {
			label = cfg.Labels.Objects
		}
		out = append(out, OptionalSelect{Label: label, Action: ActionDefaultPopup})
	}
	out = append(out, OptionalSelect{Label: tr.t(WordWidget), Action: ActionWidgetPopup})
	if cfg.DashboardAccepted {
		out = append(out, OptionalSelect{Label: tr.t(WordDashboard), Action: ActionDashboardLink})
	}
	return out
}

// SelectButtonAction is what the control's select button opens.
func SelectButtonAction(cfg FieldConfig) Action {
	switch {
	case !cfg.DefaultPrevented:
		return ActionDefaultPopup
	case cfg.WidgetAccepted:
		return ActionWidgetPopup
	default:
		return ActionNone
	}
}
