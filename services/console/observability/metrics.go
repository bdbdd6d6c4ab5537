// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and tracing for the console service.
//
// # Description
//
// Prometheus metrics cover:
//   - HTTP requests (by route and status class) and their latency
//   - Tag resolutions and the size of the resolved lists
//   - Widget field operations, including stale typed references
//   - Media type status changes and fixture imports
//
// Metrics are exposed via the /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "console"

// Metrics holds all Prometheus metrics of the console service.
type Metrics struct {
	// RequestsTotal counts HTTP requests.
	// Labels: route (gin full path), status (2xx, 4xx, 5xx)
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures HTTP request latency.
	// Labels: route
	RequestDurationSeconds *prometheus.HistogramVec

	// TagResolutionsTotal counts tag resolutions.
	// Labels: result (success, error)
	TagResolutionsTotal *prometheus.CounterVec

	// ResolvedTags observes how many entries a resolution produced.
	ResolvedTags prometheus.Histogram

	// WidgetFieldOperationsTotal counts widget field operations.
	// Labels: operation (suggest, select, options, widgets),
	// result (success, stale, error)
	WidgetFieldOperationsTotal *prometheus.CounterVec

	// MediaTypeStatusChangesTotal counts media types enabled or disabled.
	// Labels: status (enabled, disabled)
	MediaTypeStatusChangesTotal *prometheus.CounterVec

	// ImportedRecordsTotal counts records written by fixture imports.
	// Labels: kind
	ImportedRecordsTotal *prometheus.CounterVec
}

// DefaultMetrics is set by InitMetrics.
var DefaultMetrics *Metrics

// InitMetrics registers the console metrics with the default Prometheus
// registry and stores them in DefaultMetrics.
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
func InitMetrics() *Metrics {
	DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	return DefaultMetrics
}

// NewMetrics creates the console metrics and registers them with reg.
// Tests pass a fresh prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status class",
			},
			[]string{"route", "status"},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"route"},
		),

		TagResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "tag_resolutions_total",
				Help:      "Total item tag resolutions by result",
			},
			[]string{"result"},
		),

		ResolvedTags: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "resolved_tags",
				Help:      "Number of entries produced by a tag resolution",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
			},
		),

		WidgetFieldOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "widget_field_operations_total",
				Help:      "Total widget field operations by operation and result",
			},
			[]string{"operation", "result"},
		),

		MediaTypeStatusChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "mediatype_status_changes_total",
				Help:      "Total media types enabled or disabled",
			},
			[]string{"status"},
		),

		ImportedRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "imported_records_total",
				Help:      "Total records written by fixture imports",
			},
			[]string{"kind"},
		),
	}
}

// Result labels.
const (
	ResultSuccess = "success"
	ResultStale   = "stale"
	ResultError   = "error"
)

// Widget field operation labels. OpInit counts loading the submitted value
// ahead of the requested operation.
const (
	OpInit    = "init"
	OpSuggest = "suggest"
	OpSelect  = "select"
	OpOptions = "options"
	OpWidgets = "widgets"
)

// StatusClass maps an HTTP status code to "2xx", "4xx" and so on.
func StatusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(route string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, StatusClass(code)).Inc()
	m.RequestDurationSeconds.WithLabelValues(route).Observe(seconds)
}

// RecordTagResolution records one tag resolution. count is ignored on error.
func (m *Metrics) RecordTagResolution(count int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.TagResolutionsTotal.WithLabelValues(ResultError).Inc()
		return
	}
	m.TagResolutionsTotal.WithLabelValues(ResultSuccess).Inc()
	m.ResolvedTags.Observe(float64(count))
}

// RecordWidgetFieldOp records one widget field operation.
func (m *Metrics) RecordWidgetFieldOp(operation, result string) {
	if m == nil {
		return
	}
	m.WidgetFieldOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordMediaTypeStatusChange records media types whose status changed.
func (m *Metrics) RecordMediaTypeStatusChange(enabled bool, count int) {
	if m == nil || count == 0 {
		return
	}
	status := "enabled"
	if !enabled {
		status = "disabled"
	}
	m.MediaTypeStatusChangesTotal.WithLabelValues(status).Add(float64(count))
}

// RecordImport records the records written by one import, keyed by kind.
func (m *Metrics) RecordImport(counts map[string]int) {
	if m == nil {
		return
	}
	for kind, n := range counts {
		if n > 0 {
			m.ImportedRecordsTotal.WithLabelValues(kind).Add(float64(n))
		}
	}
}
