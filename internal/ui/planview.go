/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
	"roomplanner/internal/vector"
)

// planMargin is the border drawn around the room, in meters.
const planMargin = 0.25

// planView maps between widget units and editor pixels for a room fitted
// into a widget of a given size.
type planView struct {
	Origin vector.Pt // widget position of the room's top-left corner
	Scale  float64   // widget units per meter
	Room   domain.Room
	Mapper coords.Mapper
}

func fitPlan(size vector.Size, room domain.Room, m coords.Mapper) planView {
	totalW, totalH := room.Width+2*planMargin, room.Length+2*planMargin
	s := 1.0
	if totalW > 0 && totalH > 0 && size.W > 0 && size.H > 0 {
		s = math.Min(size.W/totalW, size.H/totalH)
	}
	return planView{
		Origin: vector.Pt{X: (size.W-totalW*s)/2 + planMargin*s, Y: (size.H-totalH*s)/2 + planMargin*s},
		Scale:  s,
		Room:   room,
		Mapper: m,
	}
}

// toEditor converts a widget position to an editor pixel position.
func (v planView) toEditor(p vector.Pt) domain.Point {
	x := (p.X - v.Origin.X) / v.Scale
	y := (p.Y - v.Origin.Y) / v.Scale
	return domain.Point{X: int32(math.Round(v.Mapper.MeterToPixel(x))), Y: int32(math.Round(v.Mapper.MeterToPixel(y)))}
}

// toWidget converts an editor pixel position to a widget position.
func (v planView) toWidget(p vector.Pt) vector.Pt {
	return vector.Pt{
		X: v.Origin.X + v.Mapper.PixelToMeter(p.X)*v.Scale,
		Y: v.Origin.Y + v.Mapper.PixelToMeter(p.Y)*v.Scale,
	}
}

// planRect is the widget area covered by the room plus its margin.
func (v planView) planRect() vector.Rect {
	return vector.R(v.Origin.X-planMargin*v.Scale, v.Origin.Y-planMargin*v.Scale,
		(v.Room.Width+2*planMargin)*v.Scale, (v.Room.Length+2*planMargin)*v.Scale)
}

// outline returns the rotated footprint of f in widget coordinates.
func (v planView) outline(f domain.Furniture) [4]vector.Pt {
	rot := coords.RotationToTransform(f.Rotation).About(v.Mapper.ItemCenter(f))
	corners := rot.ApplyRect(v.Mapper.ItemRect(f))
	for i := range corners {
		corners[i] = v.toWidget(corners[i])
	}
	return corners
}
