/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps the reversible-edit log over a furniture list.
//
// History is linear: a cursor points at the snapshot matching the live
// layout, undo and redo move the cursor, and a commit after an undo drops
// everything past the cursor.
package undo

import (
	"sync"
	"time"

	"roomplanner/internal/domain"
)

// DefaultMaxDepth bounds the history when Config.MaxDepth is zero.
const DefaultMaxDepth = 100

// Snapshot is an immutable copy of the furniture list at one point in time.
type Snapshot struct {
	items []domain.Furniture
	TS    time.Time
}

// Placements returns a copy of the snapshot contents.
func (s Snapshot) Placements() []domain.Furniture {
	out := make([]domain.Furniture, len(s.items))
	copy(out, s.items)
	return out
}

func (s Snapshot) Len() int { return len(s.items) }

// Source yields the live furniture list to record.
type Source interface {
	Snapshot() []domain.Furniture
}

// Restorer receives a furniture list on undo/redo.
type Restorer interface {
	Restore(items []domain.Furniture)
}

// Config controls depth and coalescing.
type Config struct {
	// MaxDepth caps stored snapshots; the oldest is evicted first.
	// Zero means DefaultMaxDepth, negative means unbounded.
	MaxDepth int
	// MinInterval coalesces a commit into the previous one when both happen
	// within the interval and nothing was undone in between. Zero disables it.
	MinInterval time.Duration
}

// Stats is a diagnostic view of the history.
type Stats struct {
	Snapshots int
	Cursor    int
	Evicted   int
}

// History is safe for concurrent use, though the editor drives it from one goroutine.
type History struct {
	cfg     Config
	mu      sync.Mutex
	entries []Snapshot
	cursor  int
	evicted int
	now     func() time.Time
}

func New(cfg Config) *History {
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return &History{cfg: cfg, cursor: -1, now: time.Now}
}

// Seed discards all history and records items as the only snapshot.
func (h *History) Seed(items []domain.Furniture) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = []Snapshot{{items: copyItems(items), TS: h.now()}}
	h.cursor = 0
	h.evicted = 0
}

// Commit records the current state of src after the cursor, clearing redo.
func (h *History) Commit(src Source) {
	s := Snapshot{items: copyItems(src.Snapshot()), TS: h.now()}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:h.cursor+1]
	if n := len(h.entries); n > 1 && h.cfg.MinInterval > 0 && s.TS.Sub(h.entries[n-1].TS) < h.cfg.MinInterval {
		h.entries[n-1] = s
		return
	}
	h.entries = append(h.entries, s)
	h.cursor = len(h.entries) - 1
	h.enforceDepthLocked()
}

// Undo restores the previous snapshot into dst. It reports false when the
// cursor is already at the oldest snapshot.
func (h *History) Undo(dst Restorer) bool {
	h.mu.Lock()
	if h.cursor <= 0 {
		h.mu.Unlock()
		return false
	}
	h.cursor--
	s := h.entries[h.cursor]
	h.mu.Unlock()
	dst.Restore(s.Placements())
	return true
}

// Redo restores the next snapshot into dst. It reports false at the newest snapshot.
func (h *History) Redo(dst Restorer) bool {
	h.mu.Lock()
	if h.cursor >= len(h.entries)-1 {
		h.mu.Unlock()
		return false
	}
	h.cursor++
	s := h.entries[h.cursor]
	h.mu.Unlock()
	dst.Restore(s.Placements())
	return true
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor >= 0 && h.cursor < len(h.entries)-1
}

// Len is the number of stored snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Cursor is the index of the snapshot matching the live layout, or -1 before Seed.
func (h *History) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Current returns the snapshot at the cursor.
func (h *History) Current() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor < 0 {
		return Snapshot{}, false
	}
	return h.entries[h.cursor], true
}

func (h *History) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Snapshots: len(h.entries), Cursor: h.cursor, Evicted: h.evicted}
}

func (h *History) enforceDepthLocked() {
	if h.cfg.MaxDepth < 0 || len(h.entries) <= h.cfg.MaxDepth {
		return
	}
	drop := len(h.entries) - h.cfg.MaxDepth
	h.entries = append([]Snapshot(nil), h.entries[drop:]...)
	h.cursor -= drop
	h.evicted += drop
}

func copyItems(items []domain.Furniture) []domain.Furniture {
	out := make([]domain.Furniture, len(items))
	copy(out, items)
	return out
}
