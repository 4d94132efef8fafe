// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation or environment parse error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables that override file values.
const (
	EnvPort         = "PIPELINES_PORT"
	EnvGinMode      = "PIPELINES_GIN_MODE"
	EnvHistoryLimit = "PIPELINES_HISTORY_LIMIT"
	EnvOTelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvRateLimitRPS = "PIPELINES_RATE_LIMIT_RPS"
	EnvLogLevel     = "PIPELINES_LOG_LEVEL"
)

var configValidate = validator.New()

// Load builds the effective configuration.
//
// # Description
//
// Starts from DefaultConfig, overlays the YAML file at path (keys missing
// from the file keep their defaults), applies environment overrides, fills
// remaining zero values and validates the result.
//
// # Inputs
//
//   - path: YAML file. Empty means defaults and environment only.
//
// # Outputs
//
//   - *Config: The effective configuration.
//   - error: File read or parse failure, or an error wrapping ErrInvalidConfig.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read the config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse the config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the validator tags on every section.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// WriteDefault writes DefaultConfig as YAML to path, creating parent
// directories. An existing file is never overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s: %w", path, os.ErrExist)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func applyEnv(cfg *Config) error {
	if v, ok := lookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvPort, v)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookupEnv(EnvGinMode); ok {
		cfg.Server.GinMode = v
	}
	if v, ok := lookupEnv(EnvHistoryLimit); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvHistoryLimit, v)
		}
		cfg.Analytics.HistoryLimit = limit
	}
	if v, ok := lookupEnv(EnvOTelEndpoint); ok {
		cfg.Telemetry.OTelEndpoint = v
	}
	if v, ok := lookupEnv(EnvRateLimitRPS); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvRateLimitRPS, v)
		}
		cfg.RateLimit.RequestsPerSecond = rps
	}
	if v, ok := lookupEnv(EnvLogLevel); ok {
		cfg.Logging.Level = strings.ToLower(v)
	}
	return nil
}

// lookupEnv treats set-but-blank variables as unset.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Server.GinMode == "" {
		cfg.Server.GinMode = defaults.Server.GinMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = defaults.CORS.AllowedOrigins
	}
	if cfg.Analytics.HistoryLimit == 0 {
		cfg.Analytics.HistoryLimit = defaults.Analytics.HistoryLimit
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = defaults.Telemetry.ServiceName
	}
	if cfg.RateLimit.RequestsPerSecond > 0 && cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = int(cfg.RateLimit.RequestsPerSecond) + 1
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
}
