// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/AleutianDAG/services/pipelines/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Helpers
// =============================================================================

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writePipeline(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// =============================================================================
// validate
// =============================================================================

func TestValidate_ValidJSON(t *testing.T) {
	path := writePipeline(t, "ok.json",
		`{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":"a","target":"b"}]}`)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, exitOK, exitCodeFor(err))
	assert.Contains(t, out, "OK: Valid DAG.")
	assert.Contains(t, out, "nodes: 2")
	assert.Contains(t, out, "edges: 1")
}

func TestValidate_CycleYAML(t *testing.T) {
	path := writePipeline(t, "cycle.yaml", `
nodes:
  - id: a
  - id: b
edges:
  - source: a
    target: b
  - source: b
    target: a
`)

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, exitInvalid, exitCodeFor(err))
	assert.True(t, isSilent(err))
	assert.True(t, errors.Is(err, errInvalidPipeline))
	assert.Contains(t, out, "ERROR: Cycle detected in graph.")
	assert.Contains(t, out, "reason: cycle_detected")
}

func TestValidate_JSONOutput(t *testing.T) {
	path := writePipeline(t, "dup.json",
		`{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":"a","target":"b"},{"source":"a","target":"b"}]}`)

	out, err := execute(t, "validate", "--json", path)
	require.Error(t, err)
	assert.Equal(t, exitInvalid, exitCodeFor(err))

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, path, report["file"])
	assert.Equal(t, false, report["isDAG"])
	assert.Equal(t, "Duplicate edge detected (a, b)", report["error"])
	assert.Equal(t, "duplicate_edge", report["reason"])
	assert.Equal(t, 2.0, report["nodes"])
	assert.Equal(t, 2.0, report["edges"])
	assert.NotContains(t, report, "message")
}

func TestValidate_JSONOutputValid(t *testing.T) {
	path := writePipeline(t, "single.json", `{"nodes":[{"id":"only"}],"edges":[]}`)

	out, err := execute(t, "validate", "--json", path)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, true, report["isDAG"])
	assert.Equal(t, "Valid single-node DAG.", report["message"])
	assert.NotContains(t, report, "reason")
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{"missing file", func(t *testing.T) []string {
			return []string{"validate", filepath.Join(t.TempDir(), "nope.json")}
		}},
		{"bad json", func(t *testing.T) []string {
			return []string{"validate", writePipeline(t, "bad.json", `{"nodes":`)}
		}},
		{"bad shape", func(t *testing.T) []string {
			return []string{"validate", writePipeline(t, "shape.json", `{"nodes":[{"id":"a"}]}`)}
		}},
		{"no argument", func(t *testing.T) []string {
			return []string{"validate"}
		}},
		{"too many arguments", func(t *testing.T) []string {
			return []string{"validate", "a.json", "b.json"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args(t)...)
			require.Error(t, err)
			assert.Equal(t, exitUsage, exitCodeFor(err))
			assert.False(t, isSilent(err))
		})
	}
}

// =============================================================================
// config init
// =============================================================================

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipelines.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default configuration to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "history_limit: 20")

	_, err = execute(t, "config", "init", path)
	require.Error(t, err, "existing files are not overwritten")
	assert.True(t, errors.Is(err, os.ErrExist))
}

// =============================================================================
// serve
// =============================================================================

func TestLoadServeConfig_PortFlag(t *testing.T) {
	t.Setenv(config.EnvPort, "")

	cfg, err := loadServeConfig(serveOptions{port: 9001, portChanged: true})
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)

	cfg, err = loadServeConfig(serveOptions{port: 9001})
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port, "unset flag keeps the configured port")

	_, err = loadServeConfig(serveOptions{port: 70000, portChanged: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestServe_BadConfigPath(t *testing.T) {
	_, err := execute(t, "serve", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCodeFor(err))
}

// =============================================================================
// ExitError
// =============================================================================

func TestExitError(t *testing.T) {
	wrapped := errors.New("boom")
	err := &ExitError{Code: 3, Wrapped: wrapped}
	assert.Equal(t, "boom", err.Error())
	assert.True(t, errors.Is(err, wrapped))
	assert.Equal(t, 3, exitCodeFor(err))
	assert.Equal(t, "exit status 4", (&ExitError{Code: 4}).Error())
	assert.Equal(t, exitOK, exitCodeFor(nil))
	assert.Equal(t, exitUsage, exitCodeFor(errors.New("plain")))
}
