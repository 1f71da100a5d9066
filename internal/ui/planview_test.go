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
	"testing"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
	"roomplanner/internal/vector"
)

func TestFitPlanCentersRoom(t *testing.T) {
	v := fitPlan(vector.Size{W: 450, H: 550}, domain.DefaultRoom(), coords.Default())
	if v.Scale != 100 {
		t.Fatalf("scale %v, want 100", v.Scale)
	}
	if v.Origin != (vector.Pt{X: 25, Y: 25}) {
		t.Fatalf("origin %+v", v.Origin)
	}
	// a wide widget letterboxes horizontally
	v = fitPlan(vector.Size{W: 1000, H: 550}, domain.DefaultRoom(), coords.Default())
	if v.Scale != 100 || v.Origin.X != 25+275 {
		t.Fatalf("letterbox: scale %v origin %+v", v.Scale, v.Origin)
	}
	r := v.planRect()
	if r.X != 275 || r.W != 450 || r.H != 550 {
		t.Fatalf("plan rect %+v", r)
	}
}

func TestPlanViewRoundTrip(t *testing.T) {
	v := fitPlan(vector.Size{W: 225, H: 275}, domain.DefaultRoom(), coords.Default())
	if v.Scale != 50 {
		t.Fatalf("scale %v", v.Scale)
	}
	p := v.toEditor(vector.Pt{X: 12.5 + 100, Y: 12.5 + 50})
	if p != (domain.Point{X: 200, Y: 100}) {
		t.Fatalf("toEditor %+v", p)
	}
	w := v.toWidget(vector.Pt{X: 200, Y: 100})
	if math.Abs(w.X-112.5) > 1e-9 || math.Abs(w.Y-62.5) > 1e-9 {
		t.Fatalf("toWidget %+v", w)
	}
}

func TestOutlineFollowsRotation(t *testing.T) {
	v := fitPlan(vector.Size{W: 450, H: 550}, domain.DefaultRoom(), coords.Default())
	sofa := domain.Template(domain.Sofa) // 200 x 90 px
	sofa.Position = domain.Point{X: 100, Y: 100}
	flat := v.outline(sofa)
	if flat[0] != (vector.Pt{X: 125, Y: 125}) || flat[2] != (vector.Pt{X: 325, Y: 215}) {
		t.Fatalf("unrotated outline %+v", flat)
	}
	sofa.Rotation = 90
	turned := v.outline(sofa)
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, c := range turned {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
	}
	if math.Abs((maxX-minX)-90) > 1e-6 {
		t.Fatalf("rotated width %v, want 90", maxX-minX)
	}
}

func TestPalette(t *testing.T) {
	names := paletteNames()
	if len(names) == 0 || names[0] != "Dark gray" {
		t.Fatalf("names %v", names)
	}
	c, ok := paletteColor("walnut")
	if !ok || c != (domain.RGB{R: 101, G: 67, B: 33}) {
		t.Fatalf("walnut: %v %v", c, ok)
	}
	if _, ok := paletteColor("plaid"); ok {
		t.Fatalf("unknown color resolved")
	}
}
