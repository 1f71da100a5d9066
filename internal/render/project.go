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

	"roomplanner/internal/camera"
	"roomplanner/internal/domain"
	"roomplanner/internal/vector"
)

// NearPlane is the camera-space depth below which geometry is clipped.
const NearPlane = 0.1

// Segment is a projected wireframe edge in viewport pixels.
type Segment struct {
	A, B  vector.Pt
	Color domain.RGB
	Kind  Kind
}

// boxEdges indexes Box.Corners.
var boxEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

func focal(v camera.View, viewport vector.Size) float64 {
	fov := v.FieldOfView
	if fov <= 0 || fov >= 180 {
		fov = camera.DefaultConfig().FieldOfView
	}
	return (viewport.H / 2) / math.Tan(vector.Radians(fov)/2)
}

func projectCam(c vector.Vec3, f float64, viewport vector.Size) vector.Pt {
	return vector.Pt{X: viewport.W/2 + c.X*f/c.Z, Y: viewport.H/2 + c.Y*f/c.Z}
}

// Project maps a world point onto the viewport. It returns false for points
// behind the near plane.
func Project(v camera.View, viewport vector.Size, p vector.Vec3) (vector.Pt, bool) {
	c := v.ToCamera(p)
	if c.Z < NearPlane {
		return vector.Pt{}, false
	}
	return projectCam(c, focal(v, viewport), viewport), true
}

// clipNear trims the segment a-b to the part in front of the near plane.
func clipNear(a, b vector.Vec3) (vector.Vec3, vector.Vec3, bool) {
	ina, inb := a.Z >= NearPlane, b.Z >= NearPlane
	switch {
	case ina && inb:
		return a, b, true
	case !ina && !inb:
		return a, b, false
	}
	t := (NearPlane - a.Z) / (b.Z - a.Z)
	cut := a.Add(b.Sub(a).Scale(t))
	cut.Z = NearPlane
	if ina {
		return a, cut, true
	}
	return cut, b, true
}

// Wireframe projects the edges of every visible box in sc.
func Wireframe(sc Scene, v camera.View, viewport vector.Size) []Segment {
	if viewport.W <= 0 || viewport.H <= 0 {
		return nil
	}
	f := focal(v, viewport)
	var out []Segment
	for _, b := range sc.Boxes {
		if !b.Visible {
			continue
		}
		corners := b.Corners()
		var cam [8]vector.Vec3
		for i, p := range corners {
			cam[i] = v.ToCamera(p)
		}
		for _, e := range boxEdges {
			a, c, ok := clipNear(cam[e[0]], cam[e[1]])
			if !ok {
				continue
			}
			out = append(out, Segment{A: projectCam(a, f, viewport), B: projectCam(c, f, viewport), Color: b.Color, Kind: b.Kind})
		}
	}
	return out
}
