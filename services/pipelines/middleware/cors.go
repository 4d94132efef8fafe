// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the pipelines service.
//
// # Request Flow
//
//	Request
//	   │
//	   ▼
//	CORS ──► RequestID ──► RateLimit ──► Handler
//
// CORS answers preflight requests before any other middleware runs.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsHeaders are the request headers a browser front end may send.
var corsHeaders = []string{
	"Origin", "Accept", "Authorization", "Content-Type", "Content-Length",
	"X-Requested-With", RequestIDHeader,
}

// CORS creates a middleware that applies the cross-origin policy.
//
// # Description
//
// With no origins, or with "*" among them, every origin is allowed. The
// request origin is echoed back instead of "*" so that credentialed
// requests from the front end keep working. All methods are accepted. A
// preflight's Access-Control-Request-Headers are echoed back as the allowed
// headers, so any request header is accepted; the "*" wildcard is not
// honored by browsers on credentialed requests.
//
// # Inputs
//
//   - allowedOrigins: Explicit origins, or empty / "*" for all.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware ready for router.Use.
//
// # Examples
//
//	router.Use(middleware.CORS([]string{"http://localhost:3000"}))
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}

	if allowsAll(allowedOrigins) {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	handler := cors.New(cfg)
	return func(c *gin.Context) {
		requested := strings.TrimSpace(c.GetHeader("Access-Control-Request-Headers"))
		if c.Request.Method == http.MethodOptions && requested != "" &&
			c.GetHeader("Access-Control-Request-Method") != "" {
			c.Writer = &preflightWriter{ResponseWriter: c.Writer, requested: requested}
		}
		handler(c)
	}
}

// preflightWriter replaces the allowed headers of an accepted preflight with
// the headers the browser asked for, just before the status is written.
type preflightWriter struct {
	gin.ResponseWriter
	requested string
}

func (w *preflightWriter) allowRequested() {
	h := w.Header()
	if h.Get("Access-Control-Allow-Origin") != "" {
		h.Set("Access-Control-Allow-Headers", w.requested)
	}
}

func (w *preflightWriter) WriteHeader(code int) {
	w.allowRequested()
	w.ResponseWriter.WriteHeader(code)
}

func (w *preflightWriter) WriteHeaderNow() {
	w.allowRequested()
	w.ResponseWriter.WriteHeaderNow()
}

func allowsAll(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
