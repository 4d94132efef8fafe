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

// Validate checks that nodes and edges form a Directed Acyclic Graph.
//
// # Description
//
// Structural checks run first, in input order, and the first violation
// encountered is reported. Cycle detection runs only once the structure is
// sound. Malformed input never panics; every failure is an invalid Result.
//
// # Inputs
//
//   - nodes: Node descriptors. Descriptors without an ID are skipped when
//     collecting IDs but still count toward len(nodes). Opaque IDs are
//     checked for duplicates but never enter the adjacency mapping.
//   - edges: Directed (Source, Target) pairs.
//
// # Outputs
//
//   - Result: Valid("Valid DAG." / "Valid single-node DAG.") or Invalid
//     with the Reason of the first violation.
//
// # Examples
//
//	res := dag.Validate(
//	    []dag.Node{dag.NewNode("1"), dag.NewNode("2")},
//	    []dag.Edge{{Source: "1", Target: "2"}},
//	)
//	res.IsDAG() // true
//
// # Limitations
//
//   - Zero edges is valid only for exactly one node descriptor.
//
// # Assumptions
//
//   - IDs are compared byte-for-byte.
func Validate(nodes []Node, edges []Edge) Result {
	if len(nodes) == 0 {
		return invalid(ReasonEmptyOrInvalidNodes, msgEmptyNodes)
	}

	// order preserves first appearance so traversal follows input order.
	order := make([]string, 0, len(nodes))
	adjacency := make(map[string][]string, len(nodes))
	var opaque map[string]struct{}
	for _, n := range nodes {
		if !n.HasID {
			continue
		}
		if n.Opaque {
			if opaque == nil {
				opaque = make(map[string]struct{})
			}
			if _, seen := opaque[n.ID]; seen {
				return invalid(ReasonDuplicateNodeID, msgDuplicateNodes)
			}
			opaque[n.ID] = struct{}{}
			continue
		}
		if _, seen := adjacency[n.ID]; seen {
			return invalid(ReasonDuplicateNodeID, msgDuplicateNodes)
		}
		adjacency[n.ID] = nil
		order = append(order, n.ID)
	}

	if len(edges) == 0 {
		if len(nodes) == 1 {
			return valid(msgValidSingleNode)
		}
		return invalid(ReasonEmptyOrInvalidEdges, msgEmptyEdges)
	}

	seenEdges := make(map[Edge]struct{}, len(edges))
	for _, e := range edges {
		_, sourceKnown := adjacency[e.Source]
		_, targetKnown := adjacency[e.Target]
		if !sourceKnown || !targetKnown {
			return invalid(ReasonInvalidEdgeReference,
				fmt.Sprintf("Invalid edge: %s -> %s", e.Source, e.Target))
		}
		if _, dup := seenEdges[e]; dup {
			return invalid(ReasonDuplicateEdge,
				fmt.Sprintf("Duplicate edge detected (%s, %s)", e.Source, e.Target))
		}
		seenEdges[e] = struct{}{}
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}

	if hasCycle(order, adjacency) {
		return invalid(ReasonCycleDetected, msgCycleDetected)
	}
	return valid(msgValidDAG)
}
