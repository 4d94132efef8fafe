// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the wire types of the pipelines service.
package datatypes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/AleutianDAG/services/pipelines/dag"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// pipelineValidate checks request shape after JSON binding.
var pipelineValidate = validator.New()

// =============================================================================
// Request Types
// =============================================================================

// PipelineNode is one node descriptor of a submitted pipeline.
//
// # Description
//
// A node is an arbitrary JSON object. Only "id" is interpreted; every key,
// including "id", is kept in Attributes. A string id lands in ID. Any other
// id value, null included, lands in RawID as its canonical JSON encoding.
// A missing id leaves both nil.
//
// # Limitations
//
//   - A non-string id can never be referenced by an edge, whose endpoints
//     are strings. It still counts in the duplicate check.
type PipelineNode struct {
	ID         *string
	RawID      json.RawMessage
	Attributes map[string]any
}

// UnmarshalJSON decodes a node object and extracts its id.
func (n *PipelineNode) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("node descriptor must be an object, got null")
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("node descriptor must be an object: %w", err)
	}
	n.Attributes = raw
	n.ID = nil
	n.RawID = nil
	v, ok := raw["id"]
	if !ok {
		return nil
	}
	if id, isString := v.(string); isString {
		n.ID = &id
		return nil
	}
	// Map keys are sorted on encode, so equal values encode identically.
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode node id: %w", err)
	}
	n.RawID = encoded
	return nil
}

// HasID reports whether the descriptor carried an "id" key at all.
func (n PipelineNode) HasID() bool {
	return n.ID != nil || n.RawID != nil
}

// MarshalJSON encodes the node back to its original object form.
func (n PipelineNode) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Attributes)+1)
	for k, v := range n.Attributes {
		out[k] = v
	}
	switch {
	case n.ID != nil:
		out["id"] = *n.ID
	case n.RawID != nil:
		out["id"] = n.RawID
	}
	return json.Marshal(out)
}

// PipelineEdge is a directed edge between two node ids.
//
// Both fields must be present. The empty string is accepted and simply
// fails to reference any node during validation.
type PipelineEdge struct {
	Source *string `json:"source" yaml:"source" validate:"required"`
	Target *string `json:"target" yaml:"target" validate:"required"`
}

// ParsePipelineRequest is the body of POST /pipelines/parse.
//
// # Description
//
// The request carries the raw node descriptors and edges. Shape is checked
// by Validate; graph semantics are checked by dag.Validate.
//
// # Validation
//
// Uses go-playground/validator:
//   - Nodes: required (a JSON array; may be empty)
//   - Edges: required (a JSON array; may be empty), each element validated
//
// # Examples
//
//	{"nodes": [{"id": "1"}, {"id": "2"}], "edges": [{"source": "1", "target": "2"}]}
type ParsePipelineRequest struct {
	Nodes []PipelineNode `json:"nodes" validate:"required"`
	Edges []PipelineEdge `json:"edges" validate:"required,dive"`
}

// Validate checks the request shape.
//
// # Outputs
//
//   - error: validator.ValidationErrors naming the offending fields.
func (r *ParsePipelineRequest) Validate() error {
	return pipelineValidate.Struct(r)
}

// Graph converts the request into validator input.
//
// Must be called after Validate succeeded.
func (r *ParsePipelineRequest) Graph() ([]dag.Node, []dag.Edge) {
	nodes := make([]dag.Node, len(r.Nodes))
	for i, n := range r.Nodes {
		switch {
		case n.ID != nil:
			nodes[i] = dag.NewNode(*n.ID)
		case n.RawID != nil:
			nodes[i] = dag.NewOpaqueNode(string(n.RawID))
		}
	}
	edges := make([]dag.Edge, len(r.Edges))
	for i, e := range r.Edges {
		edges[i] = dag.Edge{Source: deref(e.Source), Target: deref(e.Target)}
	}
	return nodes, edges
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// =============================================================================
// Response Types
// =============================================================================

// ParsePipelineResponse is the body returned by POST /pipelines/parse.
//
// Exactly one of Message or Error is set:
//
//	{"isDAG": true, "message": "Valid DAG."}
//	{"isDAG": false, "error": "Cycle detected in graph."}
type ParsePipelineResponse struct {
	IsDAG   bool   `json:"isDAG"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewParsePipelineResponse builds the response for a validation result.
func NewParsePipelineResponse(res dag.Result) ParsePipelineResponse {
	return ParsePipelineResponse{
		IsDAG:   res.IsDAG(),
		Message: res.Message(),
		Error:   res.ErrorMessage(),
	}
}

// ErrorResponse is returned for requests that could not be decoded.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// File Decoding
// =============================================================================

// DecodePipelineFile decodes a pipeline stored as JSON or YAML.
//
// # Description
//
// The format is chosen by file extension: ".yaml" and ".yml" are YAML,
// anything else is JSON. YAML documents are normalized to JSON first so
// both formats go through the same node decoding and shape validation.
//
// # Inputs
//
//   - name: File name, used only for its extension.
//   - data: File content.
//
// # Outputs
//
//   - *ParsePipelineRequest: Decoded and shape-validated pipeline.
//   - error: Decode or validation failure.
func DecodePipelineFile(name string, data []byte) (*ParsePipelineRequest, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert yaml to json: %w", err)
		}
		data = converted
	}

	var req ParsePipelineRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline shape: %w", err)
	}
	return &req, nil
}
