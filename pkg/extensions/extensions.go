// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines the pluggable security hooks of the console.
//
// # Extension Categories
//
//   - auth.go: Authentication and authorization (AuthProvider, AuthzProvider)
//   - audit.go: Change audit trail (AuditLogger)
//
// # Usage
//
// A console started without configured tokens uses no-op defaults:
//
//	opts := extensions.DefaultOptions()
//
// With tokens configured, the server swaps in real providers:
//
//	opts := extensions.DefaultOptions().
//	    WithAuth(extensions.NewStaticTokenAuthProvider(tokens)).
//	    WithAuthz(&extensions.RoleAuthzProvider{}).
//	    WithAudit(extensions.NewSlogAuditLogger(logger))
//
// # Thread Safety
//
// All interface implementations must be safe for concurrent use.
package extensions

import "errors"

// ErrUnauthorized is returned when authentication or authorization fails.
// Implementations wrap it with additional context.
var ErrUnauthorized = errors.New("unauthorized")

// ServiceOptions groups all extension points for service configuration.
type ServiceOptions struct {
	// AuthProvider validates authentication tokens.
	// Default: NopAuthProvider (always returns valid local user)
	AuthProvider AuthProvider

	// AuthzProvider checks authorization permissions.
	// Default: NopAuthzProvider (always allows all actions)
	AuthzProvider AuthzProvider

	// AuditLogger records changes.
	// Default: NopAuditLogger (discards all events)
	AuditLogger AuditLogger
}

// DefaultOptions returns ServiceOptions with no-op defaults.
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuthProvider:  &NopAuthProvider{},
		AuthzProvider: &NopAuthzProvider{},
		AuditLogger:   &NopAuditLogger{},
	}
}

// WithAuth returns a copy of opts with the given AuthProvider.
func (opts ServiceOptions) WithAuth(provider AuthProvider) ServiceOptions {
	opts.AuthProvider = provider
	return opts
}

// WithAuthz returns a copy of opts with the given AuthzProvider.
func (opts ServiceOptions) WithAuthz(provider AuthzProvider) ServiceOptions {
	opts.AuthzProvider = provider
	return opts
}

// WithAudit returns a copy of opts with the given AuditLogger.
func (opts ServiceOptions) WithAudit(logger AuditLogger) ServiceOptions {
	opts.AuditLogger = logger
	return opts
}
