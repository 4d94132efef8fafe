// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command pipelines runs the pipeline validation service and validates
// pipeline files locally.
//
//	pipelines serve [--config pipelines.yaml] [--port 8000]
//	pipelines validate pipeline.json [--json]
//	pipelines config init pipelines.yaml
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		code := exitCodeFor(err)
		if !isSilent(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(code)
	}
}
