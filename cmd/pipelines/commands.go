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
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pipelines",
		Short: "Validate pipeline graphs and serve the pipeline analytics dashboard",
		Long: `pipelines checks that a pipeline of nodes and edges forms a
directed acyclic graph. It runs as an HTTP service with a live analytics
dashboard, or validates pipeline files directly from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// --- Service ---
	var serveOpts serveOptions
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline validation HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serveOpts.portChanged = cmd.Flags().Changed("port")
			return runServe(cmd, serveOpts)
		},
	}
	serveCmd.Flags().StringVarP(&serveOpts.configPath, "config", "c", "", "Path to a pipelines.yaml config file")
	serveCmd.Flags().IntVarP(&serveOpts.port, "port", "p", 0, "Listen port (overrides config and PIPELINES_PORT)")

	// --- Local validation ---
	var validateOpts validateOptions
	validateCmd := &cobra.Command{
		Use:   "validate [pipeline file]",
		Short: "Validate a pipeline file (.json, .yaml, .yml) without a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], validateOpts)
		},
	}
	validateCmd.Flags().BoolVar(&validateOpts.jsonOutput, "json", false, "Print the result as JSON")

	// --- Configuration ---
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the service configuration file",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to a new file",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigInit,
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	return rootCmd
}
