// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dag

import "fmt"

// =============================================================================
// Graph Types
// =============================================================================

// Node is a pipeline node descriptor.
//
// Only the ID is inspected. HasID is false for descriptors that were
// submitted without an id; those still count toward the number of nodes
// but contribute nothing to the adjacency mapping.
//
// Opaque marks an id that was not a string (null, a number, ...). ID then
// holds a canonical encoding of the value. Opaque ids take part in the
// duplicate check among themselves but live apart from string ids, so no
// edge can ever reference them.
type Node struct {
	ID     string
	HasID  bool
	Opaque bool
}

// NewNode returns a Node carrying the given ID.
func NewNode(id string) Node {
	return Node{ID: id, HasID: true}
}

// NewOpaqueNode returns a Node whose id is a non-string value, encoded
// canonically as key.
func NewOpaqueNode(key string) Node {
	return Node{ID: key, HasID: true, Opaque: true}
}

// Edge is a directed (Source, Target) pair referencing node IDs.
type Edge struct {
	Source string
	Target string
}

// =============================================================================
// Reason Codes
// =============================================================================

// Reason classifies why a pipeline is not a valid DAG.
//
// Values are stable snake_case strings so they can be used directly as
// metric labels and in logs.
type Reason string

const (
	// ReasonNone is the reason attached to a valid result.
	ReasonNone Reason = ""

	// ReasonEmptyOrInvalidNodes: the node list is missing or empty.
	ReasonEmptyOrInvalidNodes Reason = "empty_or_invalid_nodes"

	// ReasonDuplicateNodeID: two descriptors share an id.
	ReasonDuplicateNodeID Reason = "duplicate_node_id"

	// ReasonEmptyOrInvalidEdges: no edges were submitted for a multi-node pipeline.
	ReasonEmptyOrInvalidEdges Reason = "empty_or_invalid_edges"

	// ReasonInvalidEdgeReference: an edge endpoint names an unknown node.
	ReasonInvalidEdgeReference Reason = "invalid_edge_reference"

	// ReasonDuplicateEdge: the same ordered pair appears twice.
	ReasonDuplicateEdge Reason = "duplicate_edge"

	// ReasonCycleDetected: the graph contains a directed cycle.
	ReasonCycleDetected Reason = "cycle_detected"
)

// String returns the reason code, or "none" for ReasonNone.
func (r Reason) String() string {
	if r == ReasonNone {
		return "none"
	}
	return string(r)
}

// Messages for each outcome. These strings are part of the HTTP contract.
const (
	msgValidSingleNode = "Valid single-node DAG."
	msgValidDAG        = "Valid DAG."
	msgEmptyNodes      = "Nodes list is empty or invalid."
	msgDuplicateNodes  = "Duplicate node IDs detected."
	msgEmptyEdges      = "Edges list is empty or invalid."
	msgCycleDetected   = "Cycle detected in graph."
)

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of Validate.
//
// # Description
//
// Result is a tagged value: either Valid with a human-readable message, or
// Invalid with a Reason and an error message. The zero value is not a
// meaningful result; construct results only through Validate.
//
// # Thread Safety
//
// Result is an immutable value type.
type Result struct {
	valid  bool
	reason Reason
	text   string
}

func valid(message string) Result {
	return Result{valid: true, text: message}
}

func invalid(reason Reason, message string) Result {
	return Result{reason: reason, text: message}
}

// IsDAG reports whether the pipeline is a valid DAG.
func (r Result) IsDAG() bool { return r.valid }

// Reason returns the failure classification, or ReasonNone when valid.
func (r Result) Reason() Reason { return r.reason }

// Message returns the success message, or "" for an invalid result.
func (r Result) Message() string {
	if r.valid {
		return r.text
	}
	return ""
}

// ErrorMessage returns the failure message, or "" for a valid result.
func (r Result) ErrorMessage() string {
	if r.valid {
		return ""
	}
	return r.text
}

// Text returns the message or error text regardless of outcome.
func (r Result) Text() string { return r.text }

// String implements fmt.Stringer for logs.
func (r Result) String() string {
	if r.valid {
		return fmt.Sprintf("valid: %s", r.text)
	}
	return fmt.Sprintf("invalid(%s): %s", r.reason, r.text)
}
