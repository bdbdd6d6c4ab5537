// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianConsole/pkg/validation"
	"github.com/AleutianAI/AleutianConsole/services/console/observability"
	"github.com/AleutianAI/AleutianConsole/services/console/widgetfield"
)

// RegistryFactory returns the widget registry of a dashboard as seen from
// the widget being edited.
type RegistryFactory func(dashboardID, editingWidgetID string) widgetfield.WidgetRegistry

// fieldRequest is the common part of every widget field request. The
// selector is rebuilt from it on each call.
type fieldRequest struct {
	Field           widgetfield.FieldConfig `json:"field"`
	Value           widgetfield.FieldValue  `json:"value"`
	EditingWidgetID string                  `json:"editing_widgetid"`
}

type suggestRequest struct {
	fieldRequest
	Search   string               `json:"search"`
	Defaults []widgetfield.Entity `json:"defaults"`
}

// selectRequest carries exactly one operation. They are tried in the
// order token, dashboard, entity, add, remove, default.
type selectRequest struct {
	fieldRequest
	Token     string              `json:"token"`
	Dashboard bool                `json:"dashboard"`
	Entity    *widgetfield.Entity `json:"entity"`
	Add       *widgetfield.Entity `json:"add"`
	Remove    string              `json:"remove"`
	Default   bool                `json:"default"`
}

type fieldResponse struct {
	Selected bool                     `json:"selected"`
	Value    widgetfield.FieldValue   `json:"value"`
	Control  *widgetfield.ListControl `json:"control"`
}

var errNoOperation = errors.New("no select operation given")

func valueOf(state widgetfield.State) widgetfield.FieldValue {
	if ref := state.TypedReference(); ref != "" {
		return widgetfield.FieldValue{Reference: ref}
	}
	return widgetfield.FieldValue{Selected: state.Selected()}
}

// widgetFieldEnv is what the widget field endpoints share.
type widgetFieldEnv struct {
	registries RegistryFactory
	metrics    *observability.Metrics
}

// open validates the request and returns a selector loaded with the
// submitted value. It writes the error response itself.
func (env widgetFieldEnv) open(c *gin.Context, op string, req fieldRequest) (*widgetfield.Selector, *widgetfield.ListControl, bool) {
	dashboardID := c.Param("dashboardid")
	if err := validation.ValidateID(dashboardID); err != nil {
		badRequest(c, err)
		return nil, nil, false
	}
	if req.EditingWidgetID != "" {
		if err := validation.ValidateID(req.EditingWidgetID); err != nil {
			badRequest(c, err)
			return nil, nil, false
		}
	}
	if err := req.Field.Validate(); err != nil {
		badRequest(c, err)
		return nil, nil, false
	}

	// A stale submitted reference is counted under init, not under op.
	label := observability.OpInit
	control := widgetfield.NewListControl()
	sel := widgetfield.NewSelector(req.Field, env.registries(dashboardID, req.EditingWidgetID), control,
		widgetfield.WithLogger(slog.Default()),
		widgetfield.WithStaleHook(func(string) {
			env.metrics.RecordWidgetFieldOp(label, observability.ResultStale)
		}))
	if err := sel.Init(c.Request.Context(), req.Value); err != nil {
		env.metrics.RecordWidgetFieldOp(observability.OpInit, observability.ResultError)
		respondError(c, err)
		return nil, nil, false
	}
	label = op
	return sel, control, true
}

// HandleWidgetFieldSuggest returns the grouped suggestion list for a
// search.
func HandleWidgetFieldSuggest(registries RegistryFactory, metrics *observability.Metrics) gin.HandlerFunc {
	env := widgetFieldEnv{registries: registries, metrics: metrics}
	return func(c *gin.Context) {
		var req suggestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		sel, _, ok := env.open(c, observability.OpSuggest, req.fieldRequest)
		if !ok {
			return
		}
		suggestions, err := sel.Suggest(c.Request.Context(), req.Search, req.Defaults)
		if err != nil {
			metrics.RecordWidgetFieldOp(observability.OpSuggest, observability.ResultError)
			respondError(c, err)
			return
		}
		metrics.RecordWidgetFieldOp(observability.OpSuggest, observability.ResultSuccess)
		if suggestions == nil {
			suggestions = []widgetfield.Suggestion{}
		}
		c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
	}
}

// HandleWidgetFieldSelect applies one selection change and returns the new
// value together with the rendered control. A stale typed reference
// reports selected=false and leaves the value as submitted.
func HandleWidgetFieldSelect(registries RegistryFactory, metrics *observability.Metrics) gin.HandlerFunc {
	env := widgetFieldEnv{registries: registries, metrics: metrics}
	return func(c *gin.Context) {
		var req selectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		sel, control, ok := env.open(c, observability.OpSelect, req.fieldRequest)
		if !ok {
			return
		}

		selected, err := applySelect(c.Request.Context(), sel, req)
		switch {
		case errors.Is(err, errNoOperation):
			badRequest(c, err)
			return
		case err != nil:
			metrics.RecordWidgetFieldOp(observability.OpSelect, observability.ResultError)
			respondError(c, err)
			return
		case selected:
			metrics.RecordWidgetFieldOp(observability.OpSelect, observability.ResultSuccess)
		}

		c.JSON(http.StatusOK, fieldResponse{
			Selected: selected,
			Value:    valueOf(sel.State()),
			Control:  control,
		})
	}
}

func applySelect(ctx context.Context, sel *widgetfield.Selector, req selectRequest) (bool, error) {
	switch {
	case req.Token != "":
		return sel.SelectTypedReference(ctx, req.Token)
	case req.Dashboard:
		return sel.SelectDashboard(ctx)
	case req.Entity != nil:
		return sel.SelectSuggested(ctx, *req.Entity)
	case req.Add != nil:
		sel.Add(*req.Add)
		return true, nil
	case req.Remove != "":
		sel.Remove(req.Remove)
		return true, nil
	case req.Default:
		sel.SelectDefault()
		return true, nil
	default:
		return false, errNoOperation
	}
}

// HandleWidgetFieldOptions returns the "add from" menu and the select
// button action of a field.
func HandleWidgetFieldOptions(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if err := req.Field.Validate(); err != nil {
			badRequest(c, err)
			return
		}
		options := widgetfield.OptionalSelects(req.Field, widgetfield.Identity)
		if options == nil {
			options = []widgetfield.OptionalSelect{}
		}
		metrics.RecordWidgetFieldOp(observability.OpOptions, observability.ResultSuccess)
		c.JSON(http.StatusOK, gin.H{
			"options":       options,
			"select_action": widgetfield.SelectButtonAction(req.Field),
		})
	}
}

// HandleDashboardWidgets lists the widgets of a dashboard that can feed
// in_type, excluding editing_widgetid.
func HandleDashboardWidgets(registries RegistryFactory, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		dashboardID := c.Param("dashboardid")
		if err := validation.ValidateID(dashboardID); err != nil {
			badRequest(c, err)
			return
		}
		editing := c.Query("editing_widgetid")
		if editing != "" {
			if err := validation.ValidateID(editing); err != nil {
				badRequest(c, err)
				return
			}
		}
		cfg := widgetfield.FieldConfig{FieldName: "widgets", InType: c.Query("in_type")}
		if err := cfg.Validate(); err != nil {
			badRequest(c, err)
			return
		}

		widgets, err := widgetfield.GetWidgets(c.Request.Context(), registries(dashboardID, editing), cfg)
		if err != nil {
			metrics.RecordWidgetFieldOp(observability.OpWidgets, observability.ResultError)
			respondError(c, err)
			return
		}
		metrics.RecordWidgetFieldOp(observability.OpWidgets, observability.ResultSuccess)
		if widgets == nil {
			widgets = []widgetfield.Entity{}
		}
		c.JSON(http.StatusOK, gin.H{"widgets": widgets})
	}
}
