/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package render

import (
	"math"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
	"roomplanner/internal/vector"
	"roomplanner/internal/visibility"
)

// SurfaceThickness is the depth of wall, floor and ceiling slabs in world units.
const SurfaceThickness = 5.0

// minExtent keeps degenerate rooms and items visible, in meters.
const minExtent = 0.1

type Kind int

const (
	KindSurface Kind = iota
	KindFurniture
)

// Box is an axis-aligned box rotated about the vertical axis.
type Box struct {
	Kind    Kind
	Surface visibility.Surface // KindSurface only
	ItemID  int                // KindFurniture only
	Label   string
	Center  vector.Vec3
	Size    vector.Vec3
	// Yaw is the rotation about the vertical axis in degrees.
	Yaw     float64
	Color   domain.RGB
	Visible bool
}

// Corners returns the eight world-space corners: the four at -Y first, then +Y.
func (b Box) Corners() [8]vector.Vec3 {
	rot := vector.RotateY(vector.Radians(b.Yaw))
	hx, hy, hz := b.Size.X/2, b.Size.Y/2, b.Size.Z/2
	local := [8]vector.Vec3{
		{X: -hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: hz}, {X: -hx, Y: -hy, Z: hz},
		{X: -hx, Y: hy, Z: -hz}, {X: hx, Y: hy, Z: -hz}, {X: hx, Y: hy, Z: hz}, {X: -hx, Y: hy, Z: hz},
	}
	var out [8]vector.Vec3
	for i, p := range local {
		out[i] = rot.Apply(p).Add(b.Center)
	}
	return out
}

// Scene is the derived 3D content of a frame.
type Scene struct {
	Seq   uint64
	Room  vector.Vec3
	Boxes []Box
}

// Visible returns the boxes that should be drawn.
func (s Scene) Visible() []Box {
	out := make([]Box, 0, len(s.Boxes))
	for _, b := range s.Boxes {
		if b.Visible {
			out = append(out, b)
		}
	}
	return out
}

// Surface looks up the slab for surface.
func (s Scene) Surface(surface visibility.Surface) (Box, bool) {
	for _, b := range s.Boxes {
		if b.Kind == KindSurface && b.Surface == surface {
			return b, true
		}
	}
	return Box{}, false
}

// Furniture returns the furniture boxes in placement order.
func (s Scene) Furniture() []Box {
	var out []Box
	for _, b := range s.Boxes {
		if b.Kind == KindFurniture {
			out = append(out, b)
		}
	}
	return out
}

func extent(m coords.Mapper, meters float64) float64 {
	return m.MeterToPixel(math.Max(minExtent, meters))
}

// Build derives the scene for f. A frame without a design yields an empty scene.
func Build(f Frame, m coords.Mapper) Scene {
	sc := Scene{Seq: f.Seq}
	if !f.HasDesign {
		return sc
	}
	r := f.Room
	w, l, h := extent(m, r.Width), extent(m, r.Length), extent(m, r.Height)
	sc.Room = vector.Vec3{X: w, Y: h, Z: l}

	slab := func(s visibility.Surface, center, size vector.Vec3, c domain.RGB) Box {
		return Box{Kind: KindSurface, Surface: s, Label: s.String(), Center: center, Size: size, Color: c, Visible: f.Surfaces.Visible(s)}
	}
	sc.Boxes = append(sc.Boxes,
		slab(visibility.Floor, vector.Vec3{Y: h / 2}, vector.Vec3{X: w, Y: SurfaceThickness, Z: l}, r.FloorColor),
		slab(visibility.Ceiling, vector.Vec3{Y: -h / 2}, vector.Vec3{X: w, Y: SurfaceThickness, Z: l}, r.WallColor),
		slab(visibility.Front, vector.Vec3{Z: -l / 2}, vector.Vec3{X: w, Y: h, Z: SurfaceThickness}, r.WallColor),
		slab(visibility.Back, vector.Vec3{Z: l / 2}, vector.Vec3{X: w, Y: h, Z: SurfaceThickness}, r.WallColor),
		slab(visibility.Right, vector.Vec3{X: w / 2}, vector.Vec3{X: SurfaceThickness, Y: h, Z: l}, r.WallColor),
		slab(visibility.Left, vector.Vec3{X: -w / 2}, vector.Vec3{X: SurfaceThickness, Y: h, Z: l}, r.WallColor),
	)

	for _, it := range f.Furniture {
		fh := math.Max(minExtent, it.Height)
		sc.Boxes = append(sc.Boxes, Box{
			Kind:    KindFurniture,
			ItemID:  it.ID,
			Label:   it.Label(),
			Center:  m.ToWorld3D(it.Position, fh, r),
			Size:    vector.Vec3{X: extent(m, it.Width), Y: m.MeterToPixel(fh), Z: extent(m, it.Length)},
			Yaw:     coords.NormalizeDegrees(it.Rotation),
			Color:   it.Color,
			Visible: true,
		})
	}
	return sc
}
