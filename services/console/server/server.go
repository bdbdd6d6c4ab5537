// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server assembles the console service: storage, tracing, metrics,
// middleware and routes, and runs the HTTP listener until its context ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianConsole/pkg/extensions"
	"github.com/AleutianAI/AleutianConsole/services/console/config"
	"github.com/AleutianAI/AleutianConsole/services/console/itemform"
	"github.com/AleutianAI/AleutianConsole/services/console/mediatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/middleware"
	"github.com/AleutianAI/AleutianConsole/services/console/observability"
	"github.com/AleutianAI/AleutianConsole/services/console/routes"
	cbadger "github.com/AleutianAI/AleutianConsole/services/console/storage/badger"
	"github.com/AleutianAI/AleutianConsole/services/console/store"
	"github.com/AleutianAI/AleutianConsole/services/console/tags"
)

// limiterCleanupInterval is how often idle rate limiter buckets are dropped.
const limiterCleanupInterval = time.Minute

// Server is a configured console service.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	metrics  *observability.Metrics
	registry *prometheus.Registry
	limiter  *middleware.RateLimiter
	router   *gin.Engine

	rowsPerPage atomic.Int64
	reloads     <-chan *config.Config
}

// New builds the router over an open store. It does not listen.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		metrics:  metrics,
		registry: registry,
	}
	s.rowsPerPage.Store(int64(cfg.UI.RowsPerPage))
	if cfg.RateLimit.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	router.Use(middleware.RequestID(), middleware.AccessLog(logger, metrics))
	if s.limiter != nil {
		router.Use(middleware.RateLimit(s.limiter))
	}

	resolver := tags.NewResolver(st, st, st, logger)
	routes.SetupRoutes(router, routes.Dependencies{
		Store:       st,
		Builder:     itemform.NewBuilder(st, resolver, metrics, logger),
		Lister:      mediatypes.NewLister(st, logger),
		Metrics:     metrics,
		Gatherer:    registry,
		RowsPerPage: s.RowsPerPage,
	}, ServiceOptions(cfg.Auth, logger))

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the service metrics.
func (s *Server) Metrics() *observability.Metrics {
	return s.metrics
}

// RowsPerPage returns the current media type list page size.
func (s *Server) RowsPerPage() int {
	return int(s.rowsPerPage.Load())
}

// Reload applies the settings that may change while serving: the rate
// limit budget and the list page size. Safe to call while requests are
// being handled.
func (s *Server) Reload(cfg *config.Config) {
	s.rowsPerPage.Store(int64(cfg.UI.RowsPerPage))
	s.limiter.SetLimits(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	if cfg.RateLimit.Enabled != (s.limiter != nil) {
		s.logger.Warn("rate_limit.enabled changes apply after a restart")
	}
	s.logger.Info("configuration reloaded",
		"rows_per_page", cfg.UI.RowsPerPage,
		"requests_per_minute", cfg.RateLimit.RequestsPerMinute,
		"burst", cfg.RateLimit.Burst)
}

// Follow makes Run apply every configuration received on reloads.
func (s *Server) Follow(reloads <-chan *config.Config) {
	s.reloads = reloads
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("console listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("console shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	if s.limiter != nil {
		g.Go(func() error {
			s.limiter.Run(limiterCleanupInterval, gctx.Done())
			return nil
		})
	}
	if s.reloads != nil {
		g.Go(func() error {
			for {
				select {
				case cfg, ok := <-s.reloads:
					if !ok {
						return nil
					}
					s.Reload(cfg)
				case <-gctx.Done():
					return nil
				}
			}
		})
	}
	return g.Wait()
}

// ServiceOptions maps the auth configuration to extension providers.
// Without tokens every caller is the local admin. Tokens without roles
// get the viewer role.
func ServiceOptions(cfg config.AuthConfig, logger *slog.Logger) extensions.ServiceOptions {
	opts := extensions.DefaultOptions().WithAudit(extensions.NewSlogAuditLogger(logger))
	if !cfg.Enabled() {
		logger.Warn("no API tokens configured, authentication disabled")
		return opts
	}
	tokens := make(map[string]extensions.AuthInfo, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		roles := t.Roles
		if len(roles) == 0 {
			roles = []string{extensions.RoleViewer}
		}
		tokens[t.Token] = extensions.AuthInfo{UserID: t.UserID, Roles: roles}
	}
	return opts.
		WithAuth(extensions.NewStaticTokenAuthProvider(tokens)).
		WithAuthz(&extensions.RoleAuthzProvider{})
}

// OpenStore opens the configured database.
func OpenStore(cfg config.StorageConfig, logger *slog.Logger) (*cbadger.DB, *store.Store, error) {
	bcfg := cbadger.InMemoryConfig()
	if !cfg.InMemory {
		bcfg = cbadger.DefaultConfig(cfg.Path)
		bcfg.GCInterval = cfg.GCInterval
	}
	bcfg.Logger = logger
	db, err := cbadger.Open(bcfg)
	if err != nil {
		return nil, nil, err
	}
	return db, store.New(db, logger), nil
}

// ImportFile imports a YAML fixture file and records the written counts.
func ImportFile(ctx context.Context, st *store.Store, path string, metrics *observability.Metrics) (store.ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return store.ImportStats{}, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	fx, err := store.DecodeFixture(f)
	if err != nil {
		return store.ImportStats{}, fmt.Errorf("%s: %w", path, err)
	}
	stats, err := st.Import(ctx, fx)
	if err != nil {
		return stats, fmt.Errorf("import %s: %w", path, err)
	}
	metrics.RecordImport(map[string]int{
		"hosts":      stats.Hosts,
		"items":      stats.Items,
		"valuemaps":  stats.ValueMaps,
		"mediatypes": stats.MediaTypes,
		"actions":    stats.Actions,
		"widgets":    stats.Widgets,
	})
	return stats, nil
}

// Serve runs the whole service for cfg until ctx is cancelled.
//
// # Description
//
// Opens the store, imports the startup fixture when configured, installs
// the tracer and serves HTTP. Configurations received on reloads are
// applied with Reload; reloads may be nil. Everything opened here is closed
// before returning.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, reloads <-chan *config.Config) error {
	db, st, err := OpenStore(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("close database", "error", cerr)
		}
	}()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, logger)
	if err != nil {
		return fmt.Errorf("setup tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	srv := New(cfg, st, logger)
	srv.Follow(reloads)
	if cfg.Storage.Fixture != "" {
		stats, err := ImportFile(ctx, st, cfg.Storage.Fixture, srv.Metrics())
		if err != nil {
			return err
		}
		logger.Info("fixture imported", "path", cfg.Storage.Fixture, "records", stats.Total())
	}
	return srv.Run(ctx)
}
