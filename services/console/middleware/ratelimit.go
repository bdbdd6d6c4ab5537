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
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleClientTTL is how long an idle client's bucket is kept.
const idleClientTTL = 5 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
//
// Safe for concurrent use.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter allows requestsPerMinute per client with the given burst.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether client may make a request now. A nil limiter
// allows everything.
func (rl *RateLimiter) Allow(client string) bool {
	if rl == nil {
		return true
	}
	now := rl.now()

	rl.mu.Lock()
	cl, ok := rl.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[client] = cl
	}
	cl.lastSeen = now
	rl.mu.Unlock()

	return cl.limiter.AllowN(now, 1)
}

// SetLimits changes the budget of every current and future client. Tokens
// already earned are kept up to the new burst.
func (rl *RateLimiter) SetLimits(requestsPerMinute, burst int) {
	if rl == nil {
		return
	}
	limit := rate.Limit(float64(requestsPerMinute) / 60.0)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limit = limit
	rl.burst = burst
	for _, cl := range rl.clients {
		cl.limiter.SetLimitAt(now, limit)
		cl.limiter.SetBurstAt(now, burst)
	}
}

// Cleanup forgets clients idle for longer than idleClientTTL and returns
// how many were removed.
func (rl *RateLimiter) Cleanup() int {
	cutoff := rl.now().Add(-idleClientTTL)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for client, cl := range rl.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.clients, client)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until stop is closed.
func (rl *RateLimiter) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.Cleanup()
		case <-stop:
			return
		}
	}
}

// RateLimit rejects requests over the client's budget with 429.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
