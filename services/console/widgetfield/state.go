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

import "slices"

// Source markers carried by optional source entities.
const (
	SourceDashboard = "dashboard"
	SourceWidget    = "widget"
)

// Entity is one selectable object. Entities offered from the optional
// sources carry a Source and their ID is a typed reference token.
type Entity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
}

// IsSourced reports whether the entity stands for a widget or the dashboard.
func (e Entity) IsSourced() bool {
	return e.Source != ""
}

// Selection is either PlainSelection or ReferenceSelection.
type Selection interface {
	isSelection()
}

// PlainSelection holds entities picked from the default source.
type PlainSelection struct {
	Entities []Entity
}

// ReferenceSelection holds one typed reference together with the caption
// and hint it was resolved to.
type ReferenceSelection struct {
	Token   string
	Caption Entity
	Hint    string
}

func (PlainSelection) isSelection()     {}
func (ReferenceSelection) isSelection() {}

// State is the complete selection state of one field.
type State struct {
	Config    FieldConfig
	Selection Selection

	// Name and Limit are the control's current submission name and
	// capacity.
	Name  string
	Limit int
}

// NewState returns an empty plain state.
func NewState(cfg FieldConfig) State {
	return State{
		Config:    cfg,
		Selection: PlainSelection{},
		Name:      cfg.PlainName(),
		Limit:     cfg.SelectedLimit,
	}
}

// TypedReference returns the selected token, or "" in plain mode.
func (s State) TypedReference() string {
	if ref, ok := s.Selection.(ReferenceSelection); ok {
		return ref.Token
	}
	return ""
}

// Selected returns the entities currently shown as chips.
func (s State) Selected() []Entity {
	switch sel := s.Selection.(type) {
	case ReferenceSelection:
		return []Entity{sel.Caption}
	case PlainSelection:
		return slices.Clone(sel.Entities)
	default:
		return nil
	}
}

func (s State) plainEntities() []Entity {
	if p, ok := s.Selection.(PlainSelection); ok {
		return p.Entities
	}
	return nil
}

// =============================================================================
// Transitions
// =============================================================================

// resolveCaption finds the caption and hint of a token among the dashboard
// token and the referable widgets.
func resolveCaption(cfg FieldConfig, token string, widgets []Entity, tr Translator) (Entity, string, bool) {
	if token == cfg.DashboardToken() {
		return Entity{ID: token, Name: tr.t(WordDashboard)}, tr.t(HintDashboard), true
	}
	for _, w := range widgets {
		if w.ID == token {
			return Entity{ID: w.ID, Name: w.Name}, tr.t(HintAnotherWidget), true
		}
	}
	return Entity{}, "", false
}

// SelectTypedReference selects token as the field's only value.
//
// # Description
//
// The token is resolved against the dashboard token and the given referable
// widgets. When it resolves, any plain selection is dropped, the control is
// renamed to the foreign reference name with capacity 1 and the caption
// becomes the sole chip.
//
// A token that resolves to nothing, typically a widget that has since been
// removed, leaves the state untouched and reports false.
//
// # Inputs
//
//   - s: Current state.
//   - token: Typed reference token.
//   - widgets: Current referable widgets, as returned by GetWidgets.
//   - tr: Translator for the dashboard caption and hint texts.
//
// # Outputs
//
//   - State: Next state.
//   - bool: True when the token resolved.
func SelectTypedReference(s State, token string, widgets []Entity, tr Translator) (State, bool) {
	caption, hint, ok := resolveCaption(s.Config, token, widgets, tr)
	if !ok {
		return s, false
	}
	s.Selection = ReferenceSelection{Token: token, Caption: caption, Hint: hint}
	s.Name = s.Config.ReferenceName()
	s.Limit = 1
	return s, true
}

// SelectSuggested applies a pick from the suggestion list.
//
// Sourced entities are typed references and go through SelectTypedReference.
// Plain entities restore plain naming and capacity, drop any typed reference
// and are added to the plain selection.
func SelectSuggested(s State, entity Entity, widgets []Entity, tr Translator) (State, bool) {
	if entity.IsSourced() {
		return SelectTypedReference(s, entity.ID, widgets, tr)
	}
	s = SelectDefault(s)
	s = BeforeAdd(s)
	return addPlain(s, entity), true
}

// SelectDefault restores plain naming and capacity ahead of a pick from the
// default source. The selection itself is left alone.
func SelectDefault(s State) State {
	s.Name = s.Config.PlainName()
	s.Limit = s.Config.SelectedLimit
	return s
}

// BeforeAdd runs before any entity is added to the control. A selected
// typed reference is removed so the new entity cannot coexist with it, and
// the control goes back to plain naming and capacity.
func BeforeAdd(s State) State {
	if _, ok := s.Selection.(ReferenceSelection); ok {
		s = dropReference(s)
	}
	return s
}

// Remove drops the entity with the given id from the selection. Removing
// the typed reference leaves an empty plain selection.
func Remove(s State, id string) State {
	switch sel := s.Selection.(type) {
	case ReferenceSelection:
		if sel.Token == id {
			s = dropReference(s)
		}
	case PlainSelection:
		kept := make([]Entity, 0, len(sel.Entities))
		for _, e := range sel.Entities {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		s.Selection = PlainSelection{Entities: kept}
	}
	return s
}

// dropReference replaces a typed reference with an empty plain selection.
func dropReference(s State) State {
	s = SelectDefault(s)
	s.Selection = PlainSelection{}
	return s
}

func addPlain(s State, entity Entity) State {
	current := s.plainEntities()
	for _, e := range current {
		if e.ID == entity.ID {
			return s
		}
	}

	var next []Entity
	switch {
	case s.Limit == 1:
		next = []Entity{entity}
	case s.Limit > 0 && len(current) >= s.Limit:
		return s
	default:
		next = append(slices.Clone(current), entity)
	}
	s.Selection = PlainSelection{Entities: next}
	return s
}
