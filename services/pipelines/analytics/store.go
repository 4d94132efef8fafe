// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analytics keeps in-memory usage statistics for pipeline validation.
//
// # Description
//
// Store counts submissions, splits them into valid and invalid DAGs, and
// retains a bounded history of the most recent submissions for the
// dashboard. Nothing is persisted; all state resets when the process exits.
//
// # Thread Safety
//
// Store is safe for concurrent use. All state is guarded by a single
// RWMutex and subscribers are notified without blocking the writer.
package analytics

import (
	"sync"
	"time"

	"github.com/AleutianAI/AleutianDAG/services/pipelines/dag"
)

// DefaultHistoryLimit is the number of submissions retained when no limit is configured.
const DefaultHistoryLimit = 20

// =============================================================================
// Types
// =============================================================================

// Submission summarizes one validated pipeline.
type Submission struct {
	// ID uniquely identifies the submission (the request ID when available).
	ID string `json:"id"`

	// Timestamp is when the submission was validated.
	Timestamp time.Time `json:"timestamp"`

	// NodeCount is the number of node descriptors submitted.
	NodeCount int `json:"nodes"`

	// EdgeCount is the number of edges submitted.
	EdgeCount int `json:"edges"`

	// IsDAG is the validation outcome.
	IsDAG bool `json:"isDAG"`

	// Reason is the failure classification (empty when valid).
	Reason dag.Reason `json:"reason,omitempty"`

	// Text is the result message or error.
	Text string `json:"text"`
}

// NewSubmission builds a Submission from a validation result.
func NewSubmission(id string, at time.Time, nodeCount, edgeCount int, res dag.Result) Submission {
	return Submission{
		ID:        id,
		Timestamp: at,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
		IsDAG:     res.IsDAG(),
		Reason:    res.Reason(),
		Text:      res.Text(),
	}
}

// Snapshot is a point-in-time copy of the analytics state.
//
// History is in insertion order (oldest first) and never longer than the
// store's history limit.
type Snapshot struct {
	TotalRequests int          `json:"total_requests"`
	ValidDAGs     int          `json:"valid_dag"`
	InvalidDAGs   int          `json:"invalid_dag"`
	History       []Submission `json:"history"`
}

// =============================================================================
// Store
// =============================================================================

// Store holds analytics counters and recent history.
//
// # Description
//
// Record is the only writer. Snapshot returns deep copies, so readers never
// observe a partially applied update.
//
// # Limitations
//
//   - In-memory only; counts reset on restart.
//   - A slow subscriber only ever sees the latest snapshot; intermediate
//     snapshots are dropped for it.
type Store struct {
	mu           sync.RWMutex
	historyLimit int
	total        int
	valid        int
	invalid      int
	history      []Submission

	subMu       sync.Mutex
	subscribers map[chan Snapshot]struct{}
}

// NewStore creates a Store keeping at most historyLimit submissions.
//
// A limit <= 0 uses DefaultHistoryLimit.
func NewStore(historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Store{
		historyLimit: historyLimit,
		history:      make([]Submission, 0, historyLimit),
		subscribers:  make(map[chan Snapshot]struct{}),
	}
}

// HistoryLimit returns the maximum number of retained submissions.
func (s *Store) HistoryLimit() int {
	return s.historyLimit
}

// Record adds a submission to the counters and history.
//
// # Description
//
// Increments the total and the valid or invalid counter, appends to the
// history, drops the oldest entries beyond the limit, and pushes the new
// snapshot to every subscriber.
//
// # Inputs
//
//   - sub: The submission to record.
func (s *Store) Record(sub Submission) {
	s.mu.Lock()
	s.total++
	if sub.IsDAG {
		s.valid++
	} else {
		s.invalid++
	}
	s.history = append(s.history, sub)
	if over := len(s.history) - s.historyLimit; over > 0 {
		// Shift in place so the backing array does not grow without bound.
		n := copy(s.history, s.history[over:])
		s.history = s.history[:n]
	}
	// Publishing under mu keeps subscribers from seeing snapshots out of order.
	s.publish(s.snapshotLocked())
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Reset clears all counters and history.
func (s *Store) Reset() {
	s.mu.Lock()
	s.total, s.valid, s.invalid = 0, 0, 0
	s.history = s.history[:0]
	s.publish(s.snapshotLocked())
	s.mu.Unlock()
}

// Subscribe registers for snapshot updates.
//
// # Description
//
// The returned channel has a buffer of one and always holds the most recent
// snapshot not yet received. Call the returned function to unsubscribe; it
// closes the channel and is safe to call more than once.
//
// # Outputs
//
//   - <-chan Snapshot: Receives a snapshot after every Record or Reset.
//   - func(): Unsubscribe.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// SubscriberCount returns the number of active subscribers.
func (s *Store) SubscriberCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subscribers)
}

func (s *Store) snapshotLocked() Snapshot {
	history := make([]Submission, len(s.history))
	copy(history, s.history)
	return Snapshot{
		TotalRequests: s.total,
		ValidDAGs:     s.valid,
		InvalidDAGs:   s.invalid,
		History:       history,
	}
}

// publish delivers snap to every subscriber, replacing any unread snapshot.
func (s *Store) publish(snap Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
