/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidGeometry marks rejected room or furniture dimensions.
var ErrInvalidGeometry = errors.New("invalid geometry")

func checkDim(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidGeometry, name, v)
	}
	return nil
}

// Validate reports the first non-positive or non-finite dimension.
func (r Room) Validate() error {
	if err := checkDim("room width", r.Width); err != nil {
		return err
	}
	if err := checkDim("room length", r.Length); err != nil {
		return err
	}
	if err := checkDim("room height", r.Height); err != nil {
		return err
	}
	if r.Shape < ShapeRectangle || r.Shape > ShapeLShaped {
		return fmt.Errorf("%w: unknown shape %d", ErrInvalidGeometry, int(r.Shape))
	}
	return nil
}

// Validate reports the first non-positive dimension or a non-finite rotation.
func (f Furniture) Validate() error {
	if f.Type < Chair || f.Type > Bookshelf {
		return fmt.Errorf("%w: unknown furniture type %d", ErrInvalidGeometry, int(f.Type))
	}
	for _, c := range []struct {
		n string
		v float64
	}{{"width", f.Width}, {"length", f.Length}, {"height", f.Height}} {
		if err := checkDim(strings.ToLower(f.Type.String())+" "+c.n, c.v); err != nil {
			return err
		}
	}
	if math.IsNaN(f.Rotation) || math.IsInf(f.Rotation, 0) {
		return fmt.Errorf("%w: rotation must be finite", ErrInvalidGeometry)
	}
	return nil
}

// Validate checks the room, every placement and id uniqueness.
func (d Design) Validate() error {
	if err := d.Room.Validate(); err != nil {
		return err
	}
	seen := make(map[int]struct{}, len(d.Furniture))
	for i, f := range d.Furniture {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("furniture[%d]: %w", i, err)
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("%w: duplicate furniture id %d", ErrInvalidGeometry, f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

// NewRoom validates and builds a room.
func NewRoom(width, length, height float64, shape Shape, floor, wall RGB) (Room, error) {
	r := Room{Width: width, Length: length, Height: height, Shape: shape, FloorColor: floor, WallColor: wall}
	if err := r.Validate(); err != nil {
		return Room{}, err
	}
	return r, nil
}

// NewFurniture validates and builds a placement template.
func NewFurniture(t FurnitureType, width, length, height float64, color RGB) (Furniture, error) {
	f := Furniture{Type: t, Width: width, Length: length, Height: height, Color: color}
	if err := f.Validate(); err != nil {
		return Furniture{}, err
	}
	return f, nil
}
