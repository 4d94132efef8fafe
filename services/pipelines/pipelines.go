// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipelines assembles the pipeline validation service.
//
// The service wires the DAG validator, the analytics store and the
// dashboard behind a gin router:
//
//	request ─▶ Recovery ─▶ RequestID ─▶ CORS ─▶ otelgin ─▶ routes
//	                                                        │
//	           /pipelines/parse ─▶ dag.Validate ─▶ analytics.Store ─▶ /dashboard/ws
//
// # Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := pipelines.New(*cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := svc.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package pipelines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/AleutianDAG/services/pipelines/analytics"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/config"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/middleware"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/observability"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/routes"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"
)

// readHeaderTimeout bounds how long a client may take to send headers.
const readHeaderTimeout = 10 * time.Second

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the lifecycle of the pipelines service.
//
// # Thread Safety
//
// Run or Serve should be called at most once per instance. Router and
// Store are safe to call at any time.
type Service interface {
	// Run listens on the configured port and serves until ctx is cancelled,
	// SIGINT or SIGTERM arrives, or the server fails.
	Run(ctx context.Context) error

	// Serve is Run on a caller-provided listener.
	Serve(ctx context.Context, ln net.Listener) error

	// Router returns the configured gin engine, mainly for tests.
	Router() *gin.Engine

	// Store returns the analytics store backing the dashboard.
	Store() *analytics.Store
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service.
//
// # Fields
//
//   - config: Effective configuration
//   - router: Gin HTTP engine with all routes registered
//   - store: Analytics store shared by the parse handler and dashboard
//   - registry: Prometheus registry, nil when metrics are disabled
//   - lifetime: Cancelled on shutdown to close dashboard websockets
//   - tracerCleanup: Flushes and stops the tracer provider
type service struct {
	config        config.Config
	router        *gin.Engine
	store         *analytics.Store
	registry      *prometheus.Registry
	lifetime      context.Context
	stop          context.CancelFunc
	tracerCleanup func(context.Context)
}

// New creates the pipelines service.
//
// # Description
//
// New initializes the components in order:
//  1. Gin mode
//  2. OpenTelemetry tracing (disabled when no endpoint is configured)
//  3. Prometheus registry with Go and process collectors (when enabled)
//  4. Analytics store
//  5. Router, middleware and routes
//
// # Inputs
//
//   - cfg: Effective configuration, normally from config.Load.
//
// # Outputs
//
//   - Service: Ready-to-run service.
//   - error: Invalid configuration or tracer setup failure.
func New(cfg config.Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.GinMode)

	s := &service{
		config: cfg,
		store:  analytics.NewStore(cfg.Analytics.HistoryLimit),
	}
	s.lifetime, s.stop = context.WithCancel(context.Background())

	cleanup, err := observability.InitTracer(context.Background(), cfg.Telemetry.OTelEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		s.stop()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	s.tracerCleanup = cleanup

	var metrics *observability.Metrics
	if cfg.Telemetry.EnableMetrics {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = observability.NewMetrics(s.registry)
	}

	s.initRouter(metrics)

	slog.Info("Pipelines service initialized",
		"port", cfg.Server.Port,
		"history_limit", s.store.HistoryLimit(),
		"metrics", cfg.Telemetry.EnableMetrics,
		"tracing", cfg.Telemetry.OTelEndpoint != "",
		"rate_limit_rps", cfg.RateLimit.RequestsPerSecond,
	)
	return s, nil
}

// Run listens on the configured port and serves until shutdown.
func (s *service) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.cleanup()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, a termination signal arrives,
// or the server fails.
//
// # Description
//
// Two goroutines run under an errgroup: the HTTP server and a watcher that
// waits for cancellation. On cancellation the watcher closes dashboard
// websockets, then calls http.Server.Shutdown with the configured timeout
// so in-flight validations complete.
//
// # Outputs
//
//   - error: Server failure or shutdown timeout. A clean shutdown is nil.
func (s *service) Serve(ctx context.Context, ln net.Listener) error {
	defer s.cleanup()

	sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		slog.Info("Starting pipelines server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down pipelines server")
		s.stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Router returns the configured gin engine.
func (s *service) Router() *gin.Engine {
	return s.router
}

// Store returns the analytics store.
func (s *service) Store() *analytics.Store {
	return s.store
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (s *service) initRouter(metrics *observability.Metrics) {
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	if s.config.Server.GinMode == gin.DebugMode {
		s.router.Use(gin.Logger())
	}
	s.router.Use(
		middleware.RequestID(),
		middleware.CORS(s.config.CORS.AllowedOrigins),
		otelgin.Middleware(s.config.Telemetry.ServiceName),
	)

	deps := routes.Dependencies{
		Store:          s.store,
		Metrics:        metrics,
		RateLimitRPS:   s.config.RateLimit.RequestsPerSecond,
		RateLimitBurst: s.config.RateLimit.Burst,
	}
	if s.registry != nil {
		deps.Gatherer = s.registry
	}
	routes.SetupRoutes(s.lifetime, s.router, deps)
}

func (s *service) cleanup() {
	s.stop()
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

var _ Service = (*service)(nil)
