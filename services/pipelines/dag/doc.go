// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dag validates that a submitted pipeline forms a Directed Acyclic Graph.
//
// # Description
//
// Validate runs the structural checks (node list present, unique node IDs,
// edges present, no dangling or duplicate edges) in input order and then
// runs cycle detection over the adjacency mapping. The first violation wins.
//
//	Validate(nodes, edges)
//	   │
//	   ├─► nodes empty?            → EmptyOrInvalidNodes
//	   ├─► duplicate IDs?          → DuplicateNodeID
//	   ├─► edges empty?            → single node ? Valid : EmptyOrInvalidEdges
//	   ├─► dangling / duplicate?   → InvalidEdgeReference / DuplicateEdge
//	   ├─► cycle (iterative DFS)?  → CycleDetected
//	   └─► Valid
//
// # Thread Safety
//
// Validate is a pure function. It allocates only call-local structures and is
// safe to call from any number of goroutines without coordination.
//
// # Limitations
//
//   - A pipeline with several nodes and no edges is reported as invalid even
//     though it is trivially acyclic. Callers depend on this behavior.
package dag
