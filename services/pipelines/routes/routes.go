// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"context"

	"github.com/AleutianAI/AleutianDAG/services/pipelines/analytics"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/handlers"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/middleware"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the shared objects the routes are wired to.
type Dependencies struct {
	// Store receives every validated submission. Required.
	Store *analytics.Store

	// Metrics may be nil.
	Metrics *observability.Metrics

	// Gatherer backs GET /metrics. When nil the endpoint is not registered.
	Gatherer prometheus.Gatherer

	// RateLimitRPS limits POST /pipelines/parse. Zero disables limiting.
	RateLimitRPS float64

	// RateLimitBurst is the token bucket size.
	RateLimitBurst int
}

// SetupRoutes registers every endpoint of the pipelines service.
//
// ctx is the service lifetime; open dashboard websockets close when it is
// cancelled.
func SetupRoutes(ctx context.Context, router *gin.Engine, deps Dependencies) {
	router.GET("/", handlers.HandleRoot)
	router.GET("/health", handlers.HealthCheck)

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	pipelines := router.Group("/pipelines")
	{
		pipelines.POST("/parse",
			middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst, deps.Metrics),
			handlers.HandleParsePipeline(deps.Store, deps.Metrics),
		)
	}

	dashboard := router.Group(handlers.DashboardPath)
	{
		dashboard.GET("", handlers.HandleDashboard(deps.Store))
		dashboard.GET("/stats", handlers.HandleDashboardStats(deps.Store))
		dashboard.GET("/ws", handlers.HandleDashboardWebSocket(ctx, deps.Store))
	}
}
