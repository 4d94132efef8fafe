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
	"fmt"

	"github.com/AleutianAI/AleutianDAG/pkg/logging"
	"github.com/AleutianAI/AleutianDAG/services/pipelines"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/config"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	configPath  string
	port        int
	portChanged bool
}

// runServe loads configuration, installs the process logger and runs the
// service until SIGINT or SIGTERM.
func runServe(cmd *cobra.Command, opts serveOptions) error {
	cfg, err := loadServeConfig(opts)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	logger, err := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.LogDir,
		Service: cfg.Telemetry.ServiceName,
		JSON:    cfg.Logging.JSON,
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer logger.Close()
	logger.SetDefault()

	svc, err := pipelines.New(*cfg)
	if err != nil {
		logger.Error("Failed to initialize the pipelines service", "error", err)
		return err
	}
	if err := svc.Run(cmd.Context()); err != nil {
		logger.Error("Pipelines service stopped with an error", "error", err)
		return err
	}
	logger.Info("Pipelines service stopped")
	return nil
}

// loadServeConfig applies the --port flag on top of config.Load.
func loadServeConfig(opts serveOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.portChanged {
		cfg.Server.Port = opts.port
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
