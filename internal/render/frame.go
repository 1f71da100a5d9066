/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package render derives a 3D scene from the controller's published frames
// and drives a renderer from a single background loop.
package render

import (
	"roomplanner/internal/camera"
	"roomplanner/internal/domain"
	"roomplanner/internal/visibility"
)

// Frame is an immutable snapshot of everything the 3D view depends on.
// Frames are never mutated after publication; Seq grows with every change.
type Frame struct {
	Seq       uint64
	HasDesign bool
	Room      domain.Room
	Furniture []domain.Furniture
	View      camera.View
	Surfaces  visibility.Flags
}

// Source hands out the latest frame. Implementations must be safe for
// concurrent use.
type Source interface {
	Frame() Frame
}

// SourceFunc adapts a function to Source.
type SourceFunc func() Frame

func (f SourceFunc) Frame() Frame { return f() }
