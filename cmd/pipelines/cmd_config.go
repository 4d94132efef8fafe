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

	"github.com/AleutianAI/AleutianDAG/pkg/ux"
	"github.com/AleutianAI/AleutianDAG/services/pipelines/config"
	"github.com/spf13/cobra"
)

// runConfigInit writes the default configuration to args[0].
func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(args[0]); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	ux.NewPrinter(cmd.OutOrStdout()).Success("Wrote default configuration to " + args[0])
	return nil
}
