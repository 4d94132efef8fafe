// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP handlers of the pipelines service.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/AleutianDAG/services/pipelines/analytics"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/dag"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/datatypes"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/middleware"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// HandleParsePipeline validates a submitted pipeline and records analytics.
//
// # Description
//
// Handles POST /pipelines/parse. The body is decoded and shape-checked,
// then passed to dag.Validate. The outcome is recorded in the analytics
// store and returned with status 200 whether or not the pipeline is a DAG.
//
// Only transport-level problems produce an error status:
//   - 400: the body is not valid JSON for the request type
//   - 422: required fields are missing (validator tags)
//
// Rejected requests are not counted in analytics.
//
// # Inputs
//
//   - store: Analytics store. Must not be nil.
//   - metrics: Prometheus metrics. May be nil.
//
// # Outputs
//
//   - gin.HandlerFunc: Handler ready for router registration.
func HandleParsePipeline(store *analytics.Store, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := middleware.GetRequestID(c)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		var req datatypes.ParsePipelineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Warn("Rejected malformed pipeline body", "request_id", requestID, "error", err)
			metrics.RecordRejected(observability.RejectMalformedJSON)
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{
				Error:   "Invalid request body",
				Details: err.Error(),
			})
			return
		}
		if err := req.Validate(); err != nil {
			slog.Warn("Rejected pipeline with invalid shape", "request_id", requestID, "error", err)
			metrics.RecordRejected(observability.RejectInvalidShape)
			c.JSON(http.StatusUnprocessableEntity, datatypes.ErrorResponse{
				Error:   "Invalid pipeline shape",
				Details: err.Error(),
			})
			return
		}

		nodes, edges := req.Graph()

		_, span := observability.Tracer().Start(c.Request.Context(), "dag.Validate")
		span.SetAttributes(
			attribute.Int("pipeline.nodes", len(nodes)),
			attribute.Int("pipeline.edges", len(edges)),
		)
		started := time.Now()
		res := dag.Validate(nodes, edges)
		elapsed := time.Since(started)
		span.SetAttributes(
			attribute.Bool("pipeline.is_dag", res.IsDAG()),
			attribute.String("pipeline.reason", res.Reason().String()),
		)
		span.End()

		store.Record(analytics.NewSubmission(requestID, started, len(nodes), len(edges), res))
		metrics.RecordValidation(res, len(nodes), len(edges), elapsed.Seconds())

		slog.Info("Pipeline validated",
			"request_id", requestID,
			"nodes", len(nodes),
			"edges", len(edges),
			"is_dag", res.IsDAG(),
			"reason", res.Reason().String(),
			"duration_us", elapsed.Microseconds(),
		)

		c.JSON(http.StatusOK, datatypes.NewParsePipelineResponse(res))
	}
}
