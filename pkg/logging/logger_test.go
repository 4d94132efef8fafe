// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "level(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"chatty", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownLevel) {
				t.Errorf("error %v does not wrap ErrUnknownLevel", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := tt.level.toSlogLevel(); got != tt.want {
			t.Errorf("%v.toSlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNew_ConsoleText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: LevelInfo, Service: "pipelines", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer logger.Close()

	logger.Debug("hidden")
	logger.Info("pipeline validated", "nodes", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %s", out)
	}
	for _, want := range []string{"pipeline validated", "nodes=3", "service=pipelines"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if logger.FilePath() != "" {
		t.Errorf("FilePath() = %q, want empty", logger.FilePath())
	}
}

func TestNew_ConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: LevelDebug, JSON: true, Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.With("request_id", "r-1").Debug("decoded")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if record["msg"] != "decoded" || record["request_id"] != "r-1" {
		t.Errorf("unexpected record %v", record)
	}
	if _, ok := record["service"]; ok {
		t.Errorf("service attribute set without Config.Service")
	}
}

func TestNew_FileLogging(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer
	logger, err := New(Config{Level: LevelInfo, LogDir: dir, Service: "pipelines", Output: &console})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Warn("rate limited", "client_ip", "10.0.0.1")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	path := logger.FilePath()
	if !strings.HasPrefix(filepath.Base(path), "pipelines_") || filepath.Ext(path) != ".log" {
		t.Errorf("unexpected log file name %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("file record is not JSON: %v (%s)", err, data)
	}
	if record["msg"] != "rate limited" || record["service"] != "pipelines" || record["level"] != "WARN" {
		t.Errorf("unexpected file record %v", record)
	}
	if !strings.Contains(console.String(), "rate limited") {
		t.Errorf("console did not receive the record")
	}
}

func TestNew_QuietFileOnly(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	logger, err := New(Config{LogDir: dir, Quiet: true, Output: &console})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("only in file")
	logger.Close()

	if console.Len() != 0 {
		t.Errorf("quiet logger wrote to console: %s", console.String())
	}
	if !strings.HasPrefix(filepath.Base(logger.FilePath()), "pipelines_") {
		t.Errorf("default file prefix not used: %s", logger.FilePath())
	}
	data, _ := os.ReadFile(logger.FilePath())
	if !strings.Contains(string(data), "only in file") {
		t.Errorf("file missing record: %s", data)
	}
}

func TestNew_QuietWithoutFile(t *testing.T) {
	logger, err := New(Config{Quiet: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Error("discarded")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNew_BadLogDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{LogDir: filepath.Join(blocker, "logs")}); err == nil {
		t.Error("expected error when LogDir is under a regular file")
	}
}

func TestLogger_SetDefault(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buf bytes.Buffer
	logger, err := New(Config{Service: "pipelines", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.SetDefault()

	slog.Info("through default")
	if !strings.Contains(buf.String(), "through default") {
		t.Errorf("slog.Info did not reach logger: %q", buf.String())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	logger, err := New(Config{Output: &lockedWriter{mu: &mu, w: &buf}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Info("tick", "worker", n)
			}
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if lines := strings.Count(buf.String(), "\n"); lines != 400 {
		t.Errorf("got %d lines, want 400", lines)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/logs"); got != filepath.Join(home, "logs") {
		t.Errorf("expandPath(~/logs) = %s", got)
	}
	if got := expandPath("/var/log"); got != "/var/log" {
		t.Errorf("expandPath(/var/log) = %s", got)
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
