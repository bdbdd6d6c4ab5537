// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent records a change made through the console.
//
// Example:
//
//	event := AuditEvent{
//	    EventType:    "mediatype.disable",
//	    UserID:       authInfo.UserID,
//	    ResourceType: "mediatype",
//	    ResourceIDs:  []string{"1", "3"},
//	    Outcome:      "success",
//	}
type AuditEvent struct {
	// EventType names the operation, e.g. "mediatype.delete".
	EventType string

	// Timestamp is when the event occurred. Set to time.Now().UTC() when zero.
	Timestamp time.Time

	// UserID identifies who performed the action.
	UserID string

	// ResourceType is the category of resource involved.
	ResourceType string

	// ResourceIDs are the affected records.
	ResourceIDs []string

	// Outcome is "success" or "failure".
	Outcome string

	// RequestID correlates the event with the access log.
	RequestID string
}

// AuditLogger records changes for later review.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type AuditLogger interface {
	Log(ctx context.Context, event AuditEvent) error
}

// NopAuditLogger discards all events.
type NopAuditLogger struct{}

// Log discards the event.
func (l *NopAuditLogger) Log(_ context.Context, _ AuditEvent) error {
	return nil
}

// SlogAuditLogger writes audit events as structured log records.
type SlogAuditLogger struct {
	logger *slog.Logger
}

// NewSlogAuditLogger creates an audit logger writing to logger.
func NewSlogAuditLogger(logger *slog.Logger) *SlogAuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuditLogger{logger: logger.With("stream", "audit")}
}

// Log writes the event at info level.
func (l *SlogAuditLogger) Log(ctx context.Context, event AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	l.logger.InfoContext(ctx, "audit",
		"event_type", event.EventType,
		"timestamp", event.Timestamp,
		"user_id", event.UserID,
		"resource_type", event.ResourceType,
		"resource_ids", event.ResourceIDs,
		"outcome", event.Outcome,
		"request_id", event.RequestID)
	return nil
}

var (
	_ AuditLogger = (*NopAuditLogger)(nil)
	_ AuditLogger = (*SlogAuditLogger)(nil)
)
