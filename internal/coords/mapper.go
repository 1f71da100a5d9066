/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package coords converts between editor pixels, room meters and 3D world
// units. Every function is total: callers pass finite, non-negative sizes.
package coords

import (
	"math"

	"roomplanner/internal/domain"
	"roomplanner/internal/vector"
)

// DefaultScale is the editor resolution in pixels per meter.
const DefaultScale = 100.0

// Mapper carries the pixels-per-meter scale. The zero value is not usable;
// build it with Default or New.
type Mapper struct {
	Scale float64
}

// Default returns a mapper at 100 px/m.
func Default() Mapper { return Mapper{Scale: DefaultScale} }

// New returns a mapper at scale px/m; non-positive or non-finite input falls back to DefaultScale.
func New(scale float64) Mapper {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = DefaultScale
	}
	return Mapper{Scale: scale}
}

func (m Mapper) MeterToPixel(meters float64) float64 { return meters * m.Scale }
func (m Mapper) PixelToMeter(px float64) float64     { return px / m.Scale }

// PixelSize is the rounded footprint of f in pixels (W along x, H along y).
func (m Mapper) PixelSize(f domain.Furniture) vector.Size {
	return vector.Size{W: math.Round(m.MeterToPixel(f.Width)), H: math.Round(m.MeterToPixel(f.Length))}
}

// RoomPixels is the rounded room footprint in pixels.
func (m Mapper) RoomPixels(r domain.Room) vector.Size {
	return vector.Size{W: math.Round(m.MeterToPixel(r.Width)), H: math.Round(m.MeterToPixel(r.Length))}
}

// ClampToRoom keeps an item of the given pixel size inside the room. When the
// item is larger than the room the lower bound wins, pinning it at 0.
func (m Mapper) ClampToRoom(pos domain.Point, item vector.Size, room domain.Room) domain.Point {
	rs := m.RoomPixels(room)
	return domain.Point{
		X: clampAxis(pos.X, rs.W-item.W),
		Y: clampAxis(pos.Y, rs.H-item.H),
	}
}

func clampAxis(v int32, upper float64) int32 {
	hi := int32(math.Floor(upper))
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}

// ClampFurniture clamps f's footprint at pos.
func (m Mapper) ClampFurniture(f domain.Furniture, pos domain.Point, room domain.Room) domain.Point {
	return m.ClampToRoom(pos, m.PixelSize(f), room)
}

// CenterOn returns the top-left position that centers an item on click.
func CenterOn(click domain.Point, item vector.Size) domain.Point {
	return domain.Point{
		X: click.X - int32(math.Round(item.W/2)),
		Y: click.Y - int32(math.Round(item.H/2)),
	}
}

// ItemRect is the un-rotated footprint of f in editor pixels.
func (m Mapper) ItemRect(f domain.Furniture) vector.Rect {
	s := m.PixelSize(f)
	return vector.R(float64(f.Position.X), float64(f.Position.Y), s.W, s.H)
}

// ItemCenter is the center of f's footprint, the 2D rotation pivot.
func (m Mapper) ItemCenter(f domain.Furniture) vector.Pt { return m.ItemRect(f).Center() }

// RoomWorld returns the room extents in world units.
func (m Mapper) RoomWorld(r domain.Room) vector.Vec3 {
	return vector.Vec3{X: m.MeterToPixel(r.Width), Y: m.MeterToPixel(r.Height), Z: m.MeterToPixel(r.Length)}
}

// ToWorld3D maps an editor position to world space centered on the room's
// footprint. World units equal editor pixels; +Y points down, so the floor
// plane sits at +roomHeight/2 and an item of height h rests at roomHeight/2 - h/2.
// itemHeight is in meters.
func (m Mapper) ToWorld3D(pos domain.Point, itemHeight float64, room domain.Room) vector.Vec3 {
	rw := m.RoomWorld(room)
	return vector.Vec3{
		X: float64(pos.X) - rw.X/2,
		Y: rw.Y/2 - m.MeterToPixel(itemHeight)/2,
		Z: float64(pos.Y) - rw.Z/2,
	}
}

// Rotation describes a placement rotation about the vertical axis.
type Rotation struct {
	// Degrees is normalized to [0, 360).
	Degrees float64
}

// Axis is the world-space rotation axis (the height axis).
var Axis = vector.Vec3{Y: 1}

// NormalizeDegrees folds any finite angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// RotationToTransform builds the rotation for deg degrees.
func RotationToTransform(deg float64) Rotation { return Rotation{Degrees: NormalizeDegrees(deg)} }

func (r Rotation) Radians() float64 { return vector.Radians(r.Degrees) }

// Matrix is the 3D rotation about Axis.
func (r Rotation) Matrix() vector.Mat3 { return vector.RotateY(r.Radians()) }

// About returns the 2D transform rotating around center, clockwise on screen.
func (r Rotation) About(center vector.Pt) vector.Affine2D {
	return vector.RotateAbout(r.Radians(), center)
}
