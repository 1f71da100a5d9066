/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"

	"roomplanner/internal/domain"
)

// fakeLayout is a minimal Source/Restorer.
type fakeLayout struct{ items []domain.Furniture }

func (f *fakeLayout) Snapshot() []domain.Furniture     { return f.items }
func (f *fakeLayout) Restore(items []domain.Furniture) { f.items = items }

func (f *fakeLayout) add(id int) {
	p := domain.Template(domain.Chair)
	p.ID = id
	next := append(append([]domain.Furniture(nil), f.items...), p)
	f.items = next
}

func ids(items []domain.Furniture) []int {
	out := make([]int, 0, len(items))
	for _, f := range items {
		out = append(out, f.ID)
	}
	return out
}

func sameIDs(a []domain.Furniture, want ...int) bool {
	got := ids(a)
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestUndoRedoScenario(t *testing.T) {
	h := New(Config{})
	m := &fakeLayout{}
	h.Seed(nil)

	m.add(1)
	h.Commit(m)
	m.add(2)
	h.Commit(m)

	if !h.Undo(m) || !sameIDs(m.items, 1) {
		t.Fatalf("first undo: got %v", ids(m.items))
	}
	if !h.Undo(m) || len(m.items) != 0 {
		t.Fatalf("second undo: got %v", ids(m.items))
	}
	if h.Undo(m) {
		t.Fatalf("undo at oldest snapshot must be a no-op")
	}
	if !h.Redo(m) || !sameIDs(m.items, 1) {
		t.Fatalf("redo: got %v", ids(m.items))
	}
}

func TestUndoAllThenRedoAll(t *testing.T) {
	h := New(Config{})
	m := &fakeLayout{}
	h.Seed(m.items)
	for i := 1; i <= 7; i++ {
		m.add(i)
		h.Commit(m)
	}
	for h.Undo(m) {
	}
	if len(m.items) != 0 {
		t.Fatalf("expected initial empty state, got %v", ids(m.items))
	}
	for h.Redo(m) {
	}
	if !sameIDs(m.items, 1, 2, 3, 4, 5, 6, 7) {
		t.Fatalf("expected latest state, got %v", ids(m.items))
	}
}

func TestCommitAfterUndoDropsRedo(t *testing.T) {
	h := New(Config{})
	m := &fakeLayout{}
	h.Seed(nil)
	m.add(1)
	h.Commit(m)
	m.add(2)
	h.Commit(m)
	h.Undo(m)
	if !h.CanRedo() {
		t.Fatalf("redo should be available after undo")
	}
	m.add(3)
	h.Commit(m)
	if h.CanRedo() || h.Redo(m) {
		t.Fatalf("redo must be impossible after a commit")
	}
	if !sameIDs(m.items, 1, 3) {
		t.Fatalf("unexpected state %v", ids(m.items))
	}
	if st := h.Stats(); st.Snapshots != 3 || st.Cursor != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestSnapshotsAreIsolatedFromSource(t *testing.T) {
	h := New(Config{})
	m := &fakeLayout{}
	h.Seed(nil)
	m.add(1)
	h.Commit(m)
	m.items[0].Rotation = 45 // mutate in place after commit
	cur, ok := h.Current()
	if !ok || cur.Placements()[0].Rotation != 0 {
		t.Fatalf("committed snapshot was aliased")
	}
	p := cur.Placements()
	p[0].Rotation = 90
	if again, _ := h.Current(); again.Placements()[0].Rotation != 0 {
		t.Fatalf("Placements must return a copy")
	}
}

func TestDepthCapEvictsOldest(t *testing.T) {
	h := New(Config{MaxDepth: 3})
	m := &fakeLayout{}
	h.Seed(nil)
	for i := 1; i <= 5; i++ {
		m.add(i)
		h.Commit(m)
	}
	st := h.Stats()
	if st.Snapshots != 3 || st.Cursor != 2 || st.Evicted != 3 {
		t.Fatalf("unexpected stats %+v", st)
	}
	h.Undo(m)
	h.Undo(m)
	if h.Undo(m) {
		t.Fatalf("evicted snapshots must not be reachable")
	}
	if !sameIDs(m.items, 1, 2, 3) {
		t.Fatalf("oldest retained state expected, got %v", ids(m.items))
	}
}

func TestUnboundedDepth(t *testing.T) {
	h := New(Config{MaxDepth: -1})
	m := &fakeLayout{}
	h.Seed(nil)
	for i := 1; i <= DefaultMaxDepth+10; i++ {
		m.add(i)
		h.Commit(m)
	}
	if st := h.Stats(); st.Snapshots != DefaultMaxDepth+11 || st.Evicted != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestCoalesceWithinInterval(t *testing.T) {
	h := New(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Unix(1000, 0)
	clock := t0
	h.now = func() time.Time { return clock }
	m := &fakeLayout{}
	h.Seed(nil)

	clock = t0.Add(time.Second)
	m.add(1)
	h.Commit(m)
	clock = clock.Add(10 * time.Millisecond)
	m.add(2)
	h.Commit(m) // coalesced into the previous entry
	if st := h.Stats(); st.Snapshots != 2 {
		t.Fatalf("expected coalescing, got %+v", st)
	}
	h.Undo(m)
	if len(m.items) != 0 {
		t.Fatalf("undo should return to the seed, got %v", ids(m.items))
	}
}

func TestUnseededHistory(t *testing.T) {
	h := New(Config{})
	m := &fakeLayout{}
	if h.Len() != 0 || h.Cursor() != -1 {
		t.Fatalf("fresh history: len=%d cursor=%d", h.Len(), h.Cursor())
	}
	if h.Undo(m) || h.Redo(m) || h.CanUndo() || h.CanRedo() {
		t.Fatalf("empty history must be inert")
	}
	m.add(1)
	h.Commit(m)
	if h.CanUndo() {
		t.Fatalf("a single snapshot cannot be undone")
	}
	if h.Len() != 1 || h.Cursor() != 0 {
		t.Fatalf("after first commit: len=%d cursor=%d", h.Len(), h.Cursor())
	}
}
