// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"errors"
	"fmt"
	"strings"
)

// ReferenceDashboard is the reference value that stands for the dashboard
// itself rather than a widget on it.
const ReferenceDashboard = "DASHBOARD"

// ForeignReferenceKey is the form field key under which a typed reference is
// submitted, e.g. "hostids[_reference]".
const ForeignReferenceKey = "_reference"

// ErrInvalidReference is returned when a typed reference token cannot be parsed.
var ErrInvalidReference = errors.New("invalid typed reference")

// TypedReference points at the output of another widget (or the dashboard)
// for one data type.
type TypedReference struct {
	Reference string `json:"reference"`
	Type      string `json:"type"`
}

// Token encodes the reference as "<reference>.<type>". References never
// contain a dot, so the first dot separates the two parts.
func (r TypedReference) Token() string {
	return r.Reference + "." + r.Type
}

// ParseTypedReference decodes a token produced by TypedReference.Token.
func ParseTypedReference(token string) (TypedReference, error) {
	reference, dataType, ok := strings.Cut(token, ".")
	if !ok || reference == "" || dataType == "" {
		return TypedReference{}, fmt.Errorf("%w: %q", ErrInvalidReference, token)
	}
	return TypedReference{Reference: reference, Type: dataType}, nil
}

// DashboardReference returns the dashboard sentinel reference for a data type.
func DashboardReference(dataType string) TypedReference {
	return TypedReference{Reference: ReferenceDashboard, Type: dataType}
}

// Widget is a widget placed on a dashboard.
//
// Reference is the widget's stable reference key that other widgets use to
// address it. OutTypes lists the data types the widget can broadcast.
type Widget struct {
	WidgetID    string   `json:"widgetid" yaml:"widgetid" validate:"required,numeric"`
	DashboardID string   `json:"dashboardid" yaml:"dashboardid" validate:"required,numeric"`
	Reference   string   `json:"reference" yaml:"reference" validate:"required,alphanum,excludes=."`
	Type        string   `json:"type" yaml:"type" validate:"required"`
	Name        string   `json:"name" yaml:"name"`
	OutTypes    []string `json:"out_types,omitempty" yaml:"out_types,omitempty"`
}

// HeaderName returns the name shown in the widget header: the custom name if
// set, otherwise the widget type.
func (w Widget) HeaderName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.Type
}

// Produces reports whether the widget broadcasts the given data type.
func (w Widget) Produces(dataType string) bool {
	for _, t := range w.OutTypes {
		if t == dataType {
			return true
		}
	}
	return false
}
