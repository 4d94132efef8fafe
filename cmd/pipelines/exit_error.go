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
	"errors"
	"fmt"
)

// Process exit codes.
const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

// ExitError carries a process exit code through cobra's error return.
//
// # Description
//
// Commands return an ExitError when the exit status matters to callers,
// such as scripts checking whether a pipeline file is a DAG. Silent errors
// have already been reported to the user and are not printed again.
type ExitError struct {
	// Code is the process exit status.
	Code int

	// Silent suppresses the "Error:" line in main.
	Silent bool

	// Wrapped is the underlying error.
	Wrapped error
}

func (e *ExitError) Error() string {
	if e.Wrapped != nil {
		return e.Wrapped.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Wrapped
}

// errInvalidPipeline marks a pipeline that decoded but is not a DAG.
var errInvalidPipeline = errors.New("pipeline is not a valid DAG")

// exitCodeFor maps a command error to an exit status. Errors that are not
// an ExitError are usage or I/O failures.
func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitUsage
}

func isSilent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Silent
}
