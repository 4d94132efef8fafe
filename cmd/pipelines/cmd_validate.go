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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AleutianAI/AleutianDAG/pkg/ux"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/dag"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/datatypes"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	jsonOutput bool
}

// validateReport is the --json output of the validate command.
type validateReport struct {
	File string `json:"file"`
	datatypes.ParsePipelineResponse
	Reason string `json:"reason,omitempty"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

// runValidate validates one pipeline file with the same validator the
// service uses.
//
// # Outputs
//
//   - error: nil for a DAG; a silent ExitError with code 1 for a pipeline
//     that is not a DAG; any other error (exit 2) for read or decode
//     failures.
func runValidate(cmd *cobra.Command, path string, opts validateOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read pipeline file: %w", err)
	}
	req, err := datatypes.DecodePipelineFile(path, data)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	nodes, edges := req.Graph()
	res := dag.Validate(nodes, edges)

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		report := validateReport{
			File:                  path,
			ParsePipelineResponse: datatypes.NewParsePipelineResponse(res),
			Nodes:                 len(req.Nodes),
			Edges:                 len(req.Edges),
		}
		if !res.IsDAG() {
			report.Reason = res.Reason().String()
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	} else {
		printer := ux.NewPrinter(out)
		printer.Title("Pipeline " + filepath.Base(path))
		printer.Field("nodes", len(req.Nodes))
		printer.Field("edges", len(req.Edges))
		if res.IsDAG() {
			printer.Success(res.Message())
		} else {
			printer.Error(res.ErrorMessage())
			printer.Field("reason", res.Reason().String())
		}
	}

	if !res.IsDAG() {
		return &ExitError{Code: exitInvalid, Silent: true, Wrapped: errInvalidPipeline}
	}
	return nil
}
