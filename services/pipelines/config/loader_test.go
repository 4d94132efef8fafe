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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvPort, EnvGinMode, EnvHistoryLimit, EnvOTelEndpoint, EnvRateLimitRPS, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipelines.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), *cfg)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Analytics.HistoryLimit)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Telemetry.EnableMetrics)
	assert.Zero(t, cfg.RateLimit.RequestsPerSecond)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  port: 9100
  gin_mode: debug
  shutdown_timeout: 3s
cors:
  allowed_origins: ["http://localhost:3000"]
analytics:
  history_limit: 50
rate_limit:
  requests_per_second: 5
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 50, cfg.Analytics.HistoryLimit)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 6, cfg.RateLimit.Burst, "burst derived from rate")
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, "pipelines", cfg.Telemetry.ServiceName)
	assert.True(t, cfg.Telemetry.EnableMetrics)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "server:\n  port: 9100\n")

	t.Setenv(EnvPort, "7000")
	t.Setenv(EnvGinMode, "test")
	t.Setenv(EnvHistoryLimit, "5")
	t.Setenv(EnvOTelEndpoint, "otel-collector:4317")
	t.Setenv(EnvRateLimitRPS, "2.5")
	t.Setenv(EnvLogLevel, "WARN")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.GinMode)
	assert.Equal(t, 5, cfg.Analytics.HistoryLimit)
	assert.Equal(t, "otel-collector:4317", cfg.Telemetry.OTelEndpoint)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "port out of range", file: "server:\n  port: 70000\n"},
		{name: "unknown gin mode", file: "server:\n  gin_mode: loud\n"},
		{name: "negative history", file: "analytics:\n  history_limit: -1\n"},
		{name: "negative rate", file: "rate_limit:\n  requests_per_second: -1\n"},
		{name: "unknown log level", file: "logging:\n  level: chatty\n"},
		{name: "blank origin", file: "cors:\n  allowed_origins: [\"\"]\n"},
		{name: "port env not a number", env: map[string]string{EnvPort: "eighty"}},
		{name: "history env not a number", env: map[string]string{EnvHistoryLimit: "many"}},
		{name: "rate env not a number", env: map[string]string{EnvRateLimitRPS: "fast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}

			cfg, err := Load(path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Load(writeFile(t, "server: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse the config file")
	assert.False(t, errors.Is(err, ErrInvalidConfig))
}

func TestWriteDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "pipelines.yaml")

	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var written Config
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, DefaultConfig(), written)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)

	err = WriteDefault(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrExist))
}
