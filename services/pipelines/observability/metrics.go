// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and tracing for the pipelines service.
//
// # Description
//
// Prometheus metrics cover pipeline validation:
//   - Validation counters (by outcome and reason)
//   - Rejected request counters (malformed bodies, rate limiting)
//   - Latency histogram of the validator
//   - Size histograms of submitted pipelines
//
// Tracing uses OpenTelemetry with an OTLP gRPC exporter.
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/AleutianAI/AleutianDAG/services/pipelines/dag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for pipeline validation metrics
const pipelinesSubsystem = "pipelines"

// Metrics holds all Prometheus metrics for pipeline validation.
//
// # Description
//
// Create once at startup with NewMetrics. A nil *Metrics is valid and
// records nothing, so handlers can run with metrics disabled.
//
// # Fields
//
//   - ValidationsTotal: Counter of validated pipelines by outcome and reason
//   - RejectedTotal: Counter of requests rejected before validation
//   - ValidationDurationSeconds: Histogram of validator latency
//   - PipelineNodes: Histogram of submitted node counts
//   - PipelineEdges: Histogram of submitted edge counts
//
// # Thread Safety
//
// All operations are thread-safe.
type Metrics struct {
	// ValidationsTotal counts validated pipelines.
	// Labels: outcome (valid, invalid), reason (none, cycle_detected, ...)
	ValidationsTotal *prometheus.CounterVec

	// RejectedTotal counts requests rejected before validation.
	// Labels: cause (malformed_json, invalid_shape, rate_limited)
	RejectedTotal *prometheus.CounterVec

	// ValidationDurationSeconds measures time spent in the validator.
	ValidationDurationSeconds prometheus.Histogram

	// PipelineNodes observes the node count of each submission.
	PipelineNodes prometheus.Histogram

	// PipelineEdges observes the edge count of each submission.
	PipelineEdges prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics.
//
// # Description
//
// Metrics are registered with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
//
// # Inputs
//
//   - reg: Registerer for the metrics. Must not be nil.
//
// # Outputs
//
//   - *Metrics: The initialized metrics instance.
//
// # Limitations
//
//   - Panics if the same registerer already holds these metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	sizeBuckets := prometheus.ExponentialBuckets(1, 2, 12)

	return &Metrics{
		ValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelinesSubsystem,
				Name:      "validations_total",
				Help:      "Total number of validated pipelines by outcome and reason",
			},
			[]string{"outcome", "reason"},
		),

		RejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelinesSubsystem,
				Name:      "rejected_requests_total",
				Help:      "Total requests rejected before validation by cause",
			},
			[]string{"cause"},
		),

		ValidationDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelinesSubsystem,
				Name:      "validation_duration_seconds",
				Help:      "Time spent validating a pipeline in seconds",
				Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
		),

		PipelineNodes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelinesSubsystem,
				Name:      "pipeline_nodes",
				Help:      "Number of nodes per submitted pipeline",
				Buckets:   sizeBuckets,
			},
		),

		PipelineEdges: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelinesSubsystem,
				Name:      "pipeline_edges",
				Help:      "Number of edges per submitted pipeline",
				Buckets:   sizeBuckets,
			},
		),
	}
}

// =============================================================================
// Rejection Causes
// =============================================================================

// RejectCause labels why a request never reached the validator.
type RejectCause string

const (
	// RejectMalformedJSON: the body is not decodable JSON.
	RejectMalformedJSON RejectCause = "malformed_json"

	// RejectInvalidShape: required fields are missing.
	RejectInvalidShape RejectCause = "invalid_shape"

	// RejectRateLimited: the request exceeded the rate limit.
	RejectRateLimited RejectCause = "rate_limited"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordValidation records one validator run.
//
// # Inputs
//
//   - res: The validation result.
//   - nodes: Number of node descriptors submitted.
//   - edges: Number of edges submitted.
//   - seconds: Validator latency in seconds.
func (m *Metrics) RecordValidation(res dag.Result, nodes, edges int, seconds float64) {
	if m == nil {
		return
	}
	outcome := "valid"
	if !res.IsDAG() {
		outcome = "invalid"
	}
	m.ValidationsTotal.WithLabelValues(outcome, res.Reason().String()).Inc()
	m.ValidationDurationSeconds.Observe(seconds)
	m.PipelineNodes.Observe(float64(nodes))
	m.PipelineEdges.Observe(float64(edges))
}

// RecordRejected records a request rejected before validation.
func (m *Metrics) RecordRejected(cause RejectCause) {
	if m == nil {
		return
	}
	m.RejectedTotal.WithLabelValues(string(cause)).Inc()
}
