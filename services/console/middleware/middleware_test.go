// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianConsole/pkg/extensions"
	"github.com/AleutianAI/AleutianConsole/services/console/observability"
)

// =============================================================================
// Test Setup
// =============================================================================

func init() {
	gin.SetMode(gin.TestMode)
}

// mockAuthProvider is a configurable mock for testing.
type mockAuthProvider struct {
	authInfo *extensions.AuthInfo
	err      error
}

func (m *mockAuthProvider) Validate(_ context.Context, _ string) (*extensions.AuthInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.authInfo, nil
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// =============================================================================
// extractBearerToken Tests
// =============================================================================

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer abc123", "abc123"},
		{"lowercase", "bearer abc123", "abc123"},
		{"mixed case", "BeArEr abc123", "abc123"},
		{"missing", "", ""},
		{"no bearer prefix", "abc123", ""},
		{"basic auth", "Basic abc123", ""},
		{"empty bearer", "Bearer ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, extractBearerToken(c))
		})
	}
}

// =============================================================================
// AuthMiddleware Tests
// =============================================================================

func TestAuthMiddleware_Success(t *testing.T) {
	provider := &mockAuthProvider{authInfo: &extensions.AuthInfo{UserID: "user-123", Roles: []string{"admin"}}}

	router := gin.New()
	router.Use(AuthMiddleware(provider))
	router.GET("/test", func(c *gin.Context) {
		authInfo := GetAuthInfo(c)
		require.NotNil(t, authInfo)
		c.JSON(http.StatusOK, gin.H{"user_id": authInfo.UserID})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
}

func TestAuthMiddleware_Failures(t *testing.T) {
	for name, err := range map[string]error{
		"unauthorized":   extensions.ErrUnauthorized,
		"provider error": errors.New("network error"),
	} {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthMiddleware(&mockAuthProvider{err: err}))
			router.GET("/test", okHandler)

			w := serve(router, httptest.NewRequest("GET", "/test", nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_StaticTokens(t *testing.T) {
	provider := extensions.NewStaticTokenAuthProvider(map[string]extensions.AuthInfo{
		"s3cret": {UserID: "ops", Roles: []string{extensions.RoleAdmin}},
	})
	router := gin.New()
	router.Use(AuthMiddleware(provider))
	router.GET("/test", okHandler)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, serve(router, req).Code)

	req = httptest.NewRequest("GET", "/test", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)
}

func TestGetAuthInfo_WrongType(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(authInfoKey, "not an AuthInfo")
	assert.Nil(t, GetAuthInfo(c))
}

// =============================================================================
// Require Tests
// =============================================================================

func TestRequire(t *testing.T) {
	viewer := &extensions.AuthInfo{UserID: "wallboard", Roles: []string{extensions.RoleViewer}}

	router := gin.New()
	router.Use(AuthMiddleware(&mockAuthProvider{authInfo: viewer}))
	authz := &extensions.RoleAuthzProvider{}
	router.GET("/read", Require(authz, extensions.ActionRead, "mediatype"), okHandler)
	router.POST("/write", Require(authz, extensions.ActionWrite, "mediatype"), okHandler)

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest("GET", "/read", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, httptest.NewRequest("POST", "/write", nil)).Code)
}

// =============================================================================
// RequestID / AccessLog Tests
// =============================================================================

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := serve(router, httptest.NewRequest("GET", "/test", nil))
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, incoming)
	assert.Equal(t, incoming, serve(router, req).Header().Get(RequestIDHeader))

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	assert.NotEqual(t, "<script>", serve(router, req).Header().Get(RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	router := gin.New()
	router.Use(RequestID(), AccessLog(logger, metrics))
	router.GET("/v1/items/:id", okHandler)

	serve(router, httptest.NewRequest("GET", "/v1/items/42", nil))
	serve(router, httptest.NewRequest("GET", "/nowhere", nil))

	out := buf.String()
	assert.Contains(t, out, "route=/v1/items/:id")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "route=unmatched")
	assert.Contains(t, out, "level=WARN")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/v1/items/:id", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("unmatched", "4xx")))
}

// =============================================================================
// RateLimit Tests
// =============================================================================

func TestRateLimiter_BurstThenReject(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(4 * time.Minute)
	rl.Allow("b")
	now = now.Add(2 * time.Minute)

	assert.Equal(t, 1, rl.Cleanup())
	assert.Len(t, rl.clients, 1)
}

func TestRateLimiter_SetLimits(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	rl.SetLimits(6000, 3)
	now = now.Add(time.Second)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("a"), "request %d", i)
	}
	assert.False(t, rl.Allow("a"))

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("b"), "request %d", i)
	}
	assert.False(t, rl.Allow("b"))
}

func TestRateLimiter_Nil(t *testing.T) {
	var rl *RateLimiter
	assert.True(t, rl.Allow("anyone"))
	rl.SetLimits(1, 1)
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(NewRateLimiter(1, 1)))
	router.GET("/test", okHandler)

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest("GET", "/test", nil)).Code)
	w := serve(router, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
