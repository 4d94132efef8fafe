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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianDAG/services/pipelines/analytics"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Setup
// ============================================================================

func init() {
	gin.SetMode(gin.TestMode)
}

func hasRoute(router *gin.Engine, method, path string) bool {
	for _, r := range router.Routes() {
		if r.Method == method && r.Path == path {
			return true
		}
	}
	return false
}

func newDeps() Dependencies {
	reg := prometheus.NewRegistry()
	return Dependencies{
		Store:    analytics.NewStore(0),
		Metrics:  observability.NewMetrics(reg),
		Gatherer: reg,
	}
}

// ============================================================================
// SetupRoutes Tests
// ============================================================================

func TestSetupRoutes_RegistersEndpoints(t *testing.T) {
	router := gin.New()
	SetupRoutes(context.Background(), router, newDeps())

	expected := []struct {
		method string
		path   string
	}{
		{"GET", "/"},
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"POST", "/pipelines/parse"},
		{"GET", "/dashboard"},
		{"GET", "/dashboard/stats"},
		{"GET", "/dashboard/ws"},
	}

	for _, e := range expected {
		assert.True(t, hasRoute(router, e.method, e.path), "expected route %s %s", e.method, e.path)
	}
}

func TestSetupRoutes_MetricsOptional(t *testing.T) {
	router := gin.New()
	deps := newDeps()
	deps.Gatherer = nil
	SetupRoutes(context.Background(), router, deps)

	assert.False(t, hasRoute(router, "GET", "/metrics"))
	assert.True(t, hasRoute(router, "POST", "/pipelines/parse"))
}

func TestSetupRoutes_ParseFeedsDashboardAndMetrics(t *testing.T) {
	router := gin.New()
	deps := newDeps()
	SetupRoutes(context.Background(), router, deps)

	body := `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":"a","target":"b"}]}`
	req := httptest.NewRequest(http.MethodPost, "/pipelines/parse", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isDAG":true,"message":"Valid DAG."}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_requests":1`)
	assert.Contains(t, w.Body.String(), `"valid_dag":1`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `aleutian_pipelines_validations_total{outcome="valid",reason="none"} 1`)
}

func TestSetupRoutes_RateLimitApplied(t *testing.T) {
	router := gin.New()
	deps := newDeps()
	deps.RateLimitRPS = 0.001
	deps.RateLimitBurst = 1
	SetupRoutes(context.Background(), router, deps)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/pipelines/parse",
			strings.NewReader(`{"nodes":[{"id":"a"}],"edges":[]}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, deps.Store.Snapshot().TotalRequests)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code, "dashboard is not rate limited")
}
