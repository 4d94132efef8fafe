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
	"log/slog"
	"net/http"

	"github.com/AleutianAI/AleutianDAG/services/pipelines/observability"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit creates a process-wide token bucket middleware.
//
// # Description
//
// Requests beyond the bucket are answered with 429 and never reach the
// handler. A non-positive rps disables limiting and returns a pass-through
// middleware.
//
// # Inputs
//
//   - rps: Sustained requests per second.
//   - burst: Bucket size. Values below 1 are raised to 1.
//   - metrics: Optional metrics sink for rejections. May be nil.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware ready for router.Use or a route group.
//
// # Limitations
//
//   - One bucket for all clients; there is no per-client fairness.
func RateLimit(rps float64, burst int, metrics *observability.Metrics) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			metrics.RecordRejected(observability.RejectRateLimited)
			slog.Warn("Rate limit exceeded",
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
