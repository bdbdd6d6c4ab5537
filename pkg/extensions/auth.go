// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"crypto/subtle"
	"fmt"
	"slices"
)

// Roles understood by RoleAuthzProvider.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Authorization actions.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// AuthInfo contains identity information returned after successful authentication.
//
// Required fields (always populated):
//   - UserID: Unique identifier for the user
//
// Optional fields (may be empty):
//   - Roles: Roles the user holds, checked by AuthzProvider
type AuthInfo struct {
	// UserID is the unique identifier for the authenticated user.
	UserID string

	// Roles contains the user's role memberships for authorization decisions.
	Roles []string
}

// HasRole checks if the user has a specific role.
func (a *AuthInfo) HasRole(role string) bool {
	return a != nil && slices.Contains(a.Roles, role)
}

// AuthProvider validates authentication tokens and returns user identity.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type AuthProvider interface {
	// Validate checks if the token is valid and returns the user's identity.
	//
	// Returns ErrUnauthorized (or wrapped) if the token is invalid, other
	// errors for provider failures.
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider is the default authentication provider.
//
// It always returns a valid local user with admin privileges, so a console
// started without tokens is fully usable on a workstation.
//
// Thread-safe: This implementation has no mutable state.
type NopAuthProvider struct{}

// Validate always returns a valid local user with admin privileges.
func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{
		UserID: "local-user",
		Roles:  []string{RoleAdmin},
	}, nil
}

// StaticTokenAuthProvider accepts a fixed set of bearer tokens.
//
// # Description
//
// Each token maps to one identity. Tokens are compared in constant time.
// The table is built once and never modified, so concurrent Validate calls
// are safe.
//
// # Examples
//
//	provider := NewStaticTokenAuthProvider(map[string]AuthInfo{
//	    "s3cret": {UserID: "ops", Roles: []string{RoleAdmin}},
//	    "r3ad":   {UserID: "wallboard", Roles: []string{RoleViewer}},
//	})
type StaticTokenAuthProvider struct {
	tokens []staticToken
}

type staticToken struct {
	token []byte
	info  AuthInfo
}

// NewStaticTokenAuthProvider creates a provider for the given token table.
// Empty tokens are ignored.
func NewStaticTokenAuthProvider(tokens map[string]AuthInfo) *StaticTokenAuthProvider {
	p := &StaticTokenAuthProvider{}
	for token, info := range tokens {
		if token == "" {
			continue
		}
		info.Roles = slices.Clone(info.Roles)
		p.tokens = append(p.tokens, staticToken{token: []byte(token), info: info})
	}
	return p
}

// Validate returns the identity bound to token.
func (p *StaticTokenAuthProvider) Validate(_ context.Context, token string) (*AuthInfo, error) {
	if token == "" {
		return nil, fmt.Errorf("missing bearer token: %w", ErrUnauthorized)
	}
	candidate := []byte(token)
	var match *AuthInfo
	for i := range p.tokens {
		if subtle.ConstantTimeCompare(p.tokens[i].token, candidate) == 1 {
			info := p.tokens[i].info
			info.Roles = slices.Clone(info.Roles)
			match = &info
		}
	}
	if match == nil {
		return nil, fmt.Errorf("unknown token: %w", ErrUnauthorized)
	}
	return match, nil
}

// AuthzRequest describes an authorization check request.
//
// Example:
//
//	req := AuthzRequest{
//	    User:         authInfo,
//	    Action:       ActionWrite,
//	    ResourceType: "mediatype",
//	}
type AuthzRequest struct {
	// User is the authenticated user making the request.
	User *AuthInfo

	// Action is ActionRead or ActionWrite.
	Action string

	// ResourceType is the category of resource being accessed, e.g.
	// "mediatype", "item", "widget".
	ResourceType string

	// ResourceID is the specific resource instance (optional).
	ResourceID string
}

// AuthzProvider checks if a user is authorized to perform an action.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type AuthzProvider interface {
	// Authorize returns nil when the action is permitted and
	// ErrUnauthorized (or wrapped) when it is denied.
	Authorize(ctx context.Context, req AuthzRequest) error
}

// NopAuthzProvider always allows all actions.
type NopAuthzProvider struct{}

// Authorize always returns nil.
func (p *NopAuthzProvider) Authorize(_ context.Context, _ AuthzRequest) error {
	return nil
}

// RoleAuthzProvider allows reads to viewers and admins and writes to admins
// only.
type RoleAuthzProvider struct{}

// Authorize applies the role rules.
func (p *RoleAuthzProvider) Authorize(_ context.Context, req AuthzRequest) error {
	if req.User == nil {
		return fmt.Errorf("anonymous %s %s: %w", req.Action, req.ResourceType, ErrUnauthorized)
	}
	if req.User.HasRole(RoleAdmin) {
		return nil
	}
	if req.Action == ActionRead && req.User.HasRole(RoleViewer) {
		return nil
	}
	return fmt.Errorf("user %s cannot %s %s: %w",
		req.User.UserID, req.Action, req.ResourceType, ErrUnauthorized)
}

// Compile-time interface compliance checks.
var (
	_ AuthProvider  = (*NopAuthProvider)(nil)
	_ AuthProvider  = (*StaticTokenAuthProvider)(nil)
	_ AuthzProvider = (*NopAuthzProvider)(nil)
	_ AuthzProvider = (*RoleAuthzProvider)(nil)
)
