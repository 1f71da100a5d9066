/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package layout holds the editable scene: one room and an ordered list of
// furniture placements. Order is insertion order and decides hit-test priority.
//
// The model is copy-on-write: every mutation installs a fresh backing slice,
// so a slice returned by Placements or handed to history is never written
// again. The model is not safe for concurrent use.
package layout

import (
	"math"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
	"roomplanner/internal/vector"
)

// Model is the single source of truth for what is in the scene.
type Model struct {
	room   domain.Room
	items  []domain.Furniture
	mapper coords.Mapper
}

// New returns an empty model for room at the default editor scale.
func New(room domain.Room) *Model { return NewWithMapper(room, coords.Default()) }

// NewWithMapper is New with an explicit pixel scale for hit testing.
func NewWithMapper(room domain.Room, m coords.Mapper) *Model {
	return &Model{room: room, mapper: m}
}

// FromDesign builds a model holding d's room and furniture.
func FromDesign(d domain.Design, m coords.Mapper) *Model {
	md := NewWithMapper(d.Room, m)
	md.Restore(d.Furniture)
	return md
}

func (m *Model) Room() domain.Room { return m.room }

// ReplaceRoom swaps the room. Placements are left where they are.
func (m *Model) ReplaceRoom(r domain.Room) { m.room = r }

func (m *Model) Len() int { return len(m.items) }

// Placements returns an independent copy of the current placements.
func (m *Model) Placements() []domain.Furniture { return clone(m.items) }

// Snapshot returns the current backing slice without copying. Callers must
// treat it as read-only; the model never writes to a slice it has published.
func (m *Model) Snapshot() []domain.Furniture { return m.items }

// Get returns the placement with id.
func (m *Model) Get(id int) (domain.Furniture, bool) {
	if i := m.indexOf(id); i >= 0 {
		return m.items[i], true
	}
	return domain.Furniture{}, false
}

// Add stores a copy of template at pos and returns it. The id is kept when it
// is positive and unused, otherwise the next free id is assigned.
func (m *Model) Add(template domain.Furniture, pos domain.Point) domain.Furniture {
	f := template
	f.Position = pos
	if f.ID <= 0 || m.indexOf(f.ID) >= 0 {
		f.ID = m.nextID()
	}
	next := make([]domain.Furniture, len(m.items), len(m.items)+1)
	copy(next, m.items)
	m.items = append(next, f)
	return f
}

// Remove deletes the placement with id; false when it does not exist.
func (m *Model) Remove(id int) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	next := make([]domain.Furniture, 0, len(m.items)-1)
	next = append(next, m.items[:i]...)
	m.items = append(next, m.items[i+1:]...)
	return true
}

// Move sets the position of id.
func (m *Model) Move(id int, pos domain.Point) bool {
	return m.update(id, func(f *domain.Furniture) { f.Position = pos })
}

// Rotate adds delta degrees to the rotation of id. The stored value is kept in
// [0, 360); a NaN or infinite delta is rejected.
func (m *Model) Rotate(id int, delta float64) bool {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return false
	}
	return m.update(id, func(f *domain.Furniture) { f.Rotation = coords.NormalizeDegrees(f.Rotation + delta) })
}

// Recolor sets the color of id.
func (m *Model) Recolor(id int, c domain.RGB) bool {
	return m.update(id, func(f *domain.Furniture) { f.Color = c })
}

// FindAt returns the topmost placement whose un-rotated footprint contains p.
// Rotation is ignored; later insertions win on overlap.
func (m *Model) FindAt(p domain.Point) (domain.Furniture, bool) {
	pt := vector.Pt{X: float64(p.X), Y: float64(p.Y)}
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.mapper.ItemRect(m.items[i]).Contains(pt) {
			return m.items[i], true
		}
	}
	return domain.Furniture{}, false
}

// Restore replaces all placements with a copy of items.
func (m *Model) Restore(items []domain.Furniture) { m.items = clone(items) }

func (m *Model) update(id int, fn func(*domain.Furniture)) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	next := clone(m.items)
	fn(&next[i])
	m.items = next
	return true
}

func (m *Model) indexOf(id int) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) nextID() int {
	hi := 0
	for _, f := range m.items {
		hi = max(hi, f.ID)
	}
	return hi + 1
}

func clone(items []domain.Furniture) []domain.Furniture {
	if items == nil {
		return nil
	}
	out := make([]domain.Furniture, len(items))
	copy(out, items)
	return out
}
