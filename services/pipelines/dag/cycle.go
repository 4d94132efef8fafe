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

// dfsFrame is one entry of the explicit traversal stack.
type dfsFrame struct {
	node string // Node being expanded
	next int    // Index of the next neighbor to visit
}

// hasCycle reports whether the adjacency mapping contains a directed cycle.
//
// Description:
//
//	Three-color depth-first search without recursion. visited holds every
//	node ever entered; onStack holds the nodes of the active path. Reaching
//	a node that is on the stack is a back edge. Reaching a visited node that
//	is off the stack is skipped, since it was already proven acyclic.
//	Traversal starts from every node in order so disconnected components
//	are covered.
//
// Algorithm:
//
//	Time:  O(V + E)
//	Space: O(V) for the sets and the explicit stack
//
// Inputs:
//   - order: Node IDs in first-appearance order.
//   - adjacency: Node ID to ordered target IDs. Every target is a key.
//
// Outputs:
//   - bool: True if a cycle exists.
func hasCycle(order []string, adjacency map[string][]string) bool {
	visited := make(map[string]bool, len(order))
	onStack := make(map[string]bool, len(order))
	stack := make([]dfsFrame, 0, 16)

	for _, root := range order {
		if visited[root] {
			continue
		}
		visited[root] = true
		onStack[root] = true
		stack = append(stack[:0], dfsFrame{node: root})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := adjacency[top.node]

			if top.next == len(neighbors) {
				onStack[top.node] = false
				stack = stack[:len(stack)-1]
				continue
			}

			next := neighbors[top.next]
			top.next++

			if onStack[next] {
				return true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			onStack[next] = true
			stack = append(stack, dfsFrame{node: next})
		}
	}
	return false
}
