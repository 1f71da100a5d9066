/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package visibility tracks which room surfaces the 3D view draws.
package visibility

import "strings"

// Surface is one of the six room boundaries.
type Surface int

const (
	Front Surface = iota
	Back
	Left
	Right
	Ceiling
	Floor
	surfaceCount
)

var surfaceNames = [surfaceCount]string{"front", "back", "left", "right", "ceiling", "floor"}

// Surfaces lists every surface in declaration order.
func Surfaces() []Surface {
	out := make([]Surface, 0, surfaceCount)
	for s := Front; s < surfaceCount; s++ {
		out = append(out, s)
	}
	return out
}

func (s Surface) Valid() bool { return s >= Front && s < surfaceCount }

func (s Surface) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return surfaceNames[s]
}

// IsWall reports whether s is one of the four walls.
func (s Surface) IsWall() bool { return s >= Front && s <= Right }

// ParseSurface resolves a UI identifier such as "ceiling" or "frontWall".
func ParseSurface(name string) (Surface, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, "wall")
	n = strings.TrimSuffix(n, "_")
	for i, sn := range surfaceNames {
		if n == sn {
			return Surface(i), true
		}
	}
	return 0, false
}

// Flags is a value copy of all six flags, safe to hand to another goroutine.
type Flags [surfaceCount]bool

func (f Flags) Visible(s Surface) bool { return s.Valid() && f[s] }

// DefaultFlags shows the floor and the back and right walls so a room seen
// from the front-left is not occluded.
func DefaultFlags() Flags {
	var f Flags
	f[Back] = true
	f[Right] = true
	f[Floor] = true
	return f
}

// State is the mutable visibility set.
type State struct {
	flags Flags
}

func New() *State { return &State{flags: DefaultFlags()} }

// Set changes one flag; invalid surfaces are ignored.
func (s *State) Set(surface Surface, visible bool) {
	if surface.Valid() {
		s.flags[surface] = visible
	}
}

func (s *State) IsVisible(surface Surface) bool { return s.flags.Visible(surface) }

// Toggle flips a flag and returns the new value.
func (s *State) Toggle(surface Surface) bool {
	if !surface.Valid() {
		return false
	}
	s.flags[surface] = !s.flags[surface]
	return s.flags[surface]
}

// SetByName is Set keyed by a UI identifier. It reports whether the name was known.
func (s *State) SetByName(name string, visible bool) bool {
	surface, ok := ParseSurface(name)
	if ok {
		s.Set(surface, visible)
	}
	return ok
}

// IsVisibleByName returns false for unknown names.
func (s *State) IsVisibleByName(name string) bool {
	surface, ok := ParseSurface(name)
	return ok && s.IsVisible(surface)
}

func (s *State) Snapshot() Flags { return s.flags }
func (s *State) Reset()          { s.flags = DefaultFlags() }
