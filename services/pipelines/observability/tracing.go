// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// TracerName is the instrumentation name used for spans created by the service.
const TracerName = "github.com/AleutianAI/AleutianDAG/services/pipelines"

// Tracer returns the service tracer from the global provider.
//
// With no provider installed the global provider is a no-op, so spans are
// free when tracing is disabled.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// InitTracer initializes OpenTelemetry distributed tracing.
//
// # Description
//
// Sets up an OTLP trace exporter that sends spans to endpoint over an
// insecure gRPC connection and installs it as the global tracer provider.
// An empty endpoint disables tracing and returns a no-op cleanup.
//
// # Inputs
//
//   - ctx: Context for exporter setup.
//   - endpoint: OTLP collector address (host:port). Empty disables tracing.
//   - serviceName: Value of the service.name resource attribute.
//
// # Outputs
//
//   - func(context.Context): Cleanup function to call on shutdown.
//   - error: Non-nil if tracer setup fails.
//
// # Limitations
//
//   - Uses insecure gRPC connection (appropriate for internal networks)
//
// # Assumptions
//
//   - OTel collector is reachable at the configured endpoint
func InitTracer(ctx context.Context, endpoint, serviceName string) (func(context.Context), error) {
	if endpoint == "" {
		slog.Info("OTLP endpoint not configured, tracing disabled")
		return func(context.Context) {}, nil
	}

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	slog.Info("Initialized OTLP tracing", "endpoint", endpoint)

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := traceProvider.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown tracer provider", "error", err)
		}
	}, nil
}
