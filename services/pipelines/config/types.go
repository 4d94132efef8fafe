// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the pipelines service configuration.
//
// Values come from three layers, later layers winning:
//
//	DefaultConfig()  ->  YAML file (optional)  ->  environment variables
//
// The result is validated with go-playground/validator; any failure wraps
// ErrInvalidConfig.
package config

import "time"

// Config is the root of the pipelines.yaml file.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CORS      CORSConfig      `yaml:"cors"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	GinMode         string        `yaml:"gin_mode" validate:"oneof=debug release test"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0"`
}

// CORSConfig lists the origins allowed to call the API. "*" allows any
// origin and still permits credentials (the origin is echoed back).
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" validate:"min=1,dive,required"`
}

// AnalyticsConfig sizes the in-memory analytics store.
type AnalyticsConfig struct {
	HistoryLimit int `yaml:"history_limit" validate:"min=1,max=10000"`
}

// TelemetryConfig controls tracing and metrics.
type TelemetryConfig struct {
	// ServiceName is reported as service.name on every span.
	ServiceName string `yaml:"service_name" validate:"required"`

	// OTelEndpoint is the OTLP gRPC collector address. Empty disables tracing.
	OTelEndpoint string `yaml:"otel_endpoint"`

	// EnableMetrics serves GET /metrics.
	EnableMetrics bool `yaml:"enable_metrics"`
}

// RateLimitConfig limits POST /pipelines/parse. RequestsPerSecond 0 disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
	Burst             int     `yaml:"burst" validate:"min=0"`
}

// LoggingConfig mirrors pkg/logging.Config.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON   bool   `yaml:"json"`
	LogDir string `yaml:"log_dir"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			GinMode:         "release",
			ShutdownTimeout: 10 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Analytics: AnalyticsConfig{
			HistoryLimit: 20,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "pipelines",
			EnableMetrics: true,
		},
		RateLimit: RateLimitConfig{},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
