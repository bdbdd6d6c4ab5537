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
	"log/slog"
)

// FieldValue is the submitted value of a field: either a typed reference
// or plain entities.
type FieldValue struct {
	Reference string   `json:"_reference,omitempty"`
	Selected  []Entity `json:"selected,omitempty"`
}

// Option configures a Selector.
type Option func(*Selector)

// WithTranslator sets the translator for fixed words.
func WithTranslator(tr Translator) Option {
	return func(s *Selector) { s.tr = tr }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStaleHook is called with the token whenever a typed reference fails
// to resolve.
func WithStaleHook(fn func(token string)) Option {
	return func(s *Selector) { s.onStale = fn }
}

// Selector owns the state of one field and keeps its control in sync.
//
// # Description
//
// Every method computes the next State with the pure transitions and then
// re-renders the control with Apply. The owning form calls BeforeAdd and
// BeforeRemove at the matching points of the control's lifecycle.
type Selector struct {
	state    State
	registry WidgetRegistry
	control  Control
	tr       Translator
	logger   *slog.Logger
	onStale  func(token string)
}

// NewSelector creates a Selector with an empty plain selection and renders
// it onto control.
func NewSelector(cfg FieldConfig, registry WidgetRegistry, control Control, opts ...Option) *Selector {
	s := &Selector{
		state:    NewState(cfg),
		registry: registry,
		control:  control,
		tr:       Identity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "widgetfield", "field", cfg.FieldName)
	s.render()
	return s
}

// Init loads a submitted value. A stored typed reference is selected the
// same way a user pick would be, so a stale one leaves the field empty.
func (s *Selector) Init(ctx context.Context, value FieldValue) error {
	if value.Reference != "" {
		_, err := s.SelectTypedReference(ctx, value.Reference)
		return err
	}
	next := s.state
	for _, e := range value.Selected {
		next = addPlain(next, e)
	}
	s.commit(next)
	return nil
}

// State returns the current state.
func (s *Selector) State() State {
	return s.state
}

// Widgets returns the current referable widgets.
func (s *Selector) Widgets(ctx context.Context) ([]Entity, error) {
	return GetWidgets(ctx, s.registry, s.state.Config)
}

// SelectTypedReference selects token. It reports false, and changes
// nothing, when the token does not resolve.
func (s *Selector) SelectTypedReference(ctx context.Context, token string) (bool, error) {
	widgets, err := s.widgetsFor(ctx, token)
	if err != nil {
		return false, err
	}
	next, ok := SelectTypedReference(s.state, token, widgets, s.tr)
	if !ok {
		s.stale(token)
		return false, nil
	}
	s.commit(next)
	return true, nil
}

// SelectDashboard selects the dashboard as the field's source.
func (s *Selector) SelectDashboard(ctx context.Context) (bool, error) {
	return s.SelectTypedReference(ctx, s.state.Config.DashboardToken())
}

// SelectSuggested applies a pick from the suggestion list.
func (s *Selector) SelectSuggested(ctx context.Context, entity Entity) (bool, error) {
	if entity.IsSourced() {
		return s.SelectTypedReference(ctx, entity.ID)
	}
	next, _ := SelectSuggested(s.state, entity, nil, s.tr)
	s.commit(next)
	return true, nil
}

// SelectDefault prepares the control for a pick from the default popup.
func (s *Selector) SelectDefault() {
	s.commit(SelectDefault(s.state))
}

// Suggest returns the grouped suggestion list for search.
func (s *Selector) Suggest(ctx context.Context, search string, defaults []Entity) ([]Suggestion, error) {
	var widgets []Entity
	if s.state.Config.WidgetAccepted {
		var err error
		if widgets, err = s.Widgets(ctx); err != nil {
			return nil, err
		}
	}
	return ModifySuggestedList(s.state.Config, search, defaults, widgets, s.tr), nil
}

// BeforeAdd must be called before an entity is added through the control.
func (s *Selector) BeforeAdd() {
	s.commit(BeforeAdd(s.state))
}

// BeforeRemove must be called before an entity is removed through the
// control. The rendered list is emptied; the following Remove re-renders
// what is left.
func (s *Selector) BeforeRemove() {
	if s.control != nil {
		s.control.Clear()
	}
}

// Add adds a plain entity picked through the control.
func (s *Selector) Add(entity Entity) {
	s.BeforeAdd()
	s.commit(addPlain(s.state, entity))
}

// Remove removes an entity through the control.
func (s *Selector) Remove(id string) {
	s.BeforeRemove()
	s.commit(Remove(s.state, id))
}

func (s *Selector) widgetsFor(ctx context.Context, token string) ([]Entity, error) {
	if token == s.state.Config.DashboardToken() {
		return nil, nil
	}
	return s.Widgets(ctx)
}

func (s *Selector) stale(token string) {
	s.logger.Debug("typed reference did not resolve, ignoring", "token", token)
	if s.onStale != nil {
		s.onStale(token)
	}
}

func (s *Selector) commit(next State) {
	s.state = next
	s.render()
}

func (s *Selector) render() {
	if s.control != nil {
		Apply(s.control, s.state)
	}
}
