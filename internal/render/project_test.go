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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomplanner/internal/camera"
	"roomplanner/internal/vector"
)

func levelView() camera.View {
	s := camera.New(camera.DefaultConfig())
	s.Tilt(-s.Pitch())
	return s.View()
}

func TestProjectCenterAndBehind(t *testing.T) {
	vp := vector.Size{W: 800, H: 600}
	v := levelView()

	p, ok := Project(v, vp, vector.Vec3{})
	require.True(t, ok)
	assert.InDelta(t, 400, p.X, 1e-9)
	assert.InDelta(t, 300, p.Y, 1e-9)

	_, ok = Project(v, vp, vector.Vec3{Z: -2000})
	assert.False(t, ok)
}

func TestProjectRightIsRight(t *testing.T) {
	vp := vector.Size{W: 800, H: 600}
	p, ok := Project(levelView(), vp, vector.Vec3{X: 100, Y: 100})
	require.True(t, ok)
	assert.Greater(t, p.X, 400.0)
	assert.Greater(t, p.Y, 300.0)
}

func TestWireframe(t *testing.T) {
	vp := vector.Size{W: 640, H: 480}
	sc := Scene{Boxes: []Box{
		{Size: vector.Vec3{X: 100, Y: 100, Z: 100}, Visible: true, Kind: KindFurniture},
		{Size: vector.Vec3{X: 100, Y: 100, Z: 100}, Visible: false},
	}}
	segs := Wireframe(sc, levelView(), vp)
	assert.Len(t, segs, 12)
	for _, s := range segs {
		assert.Equal(t, KindFurniture, s.Kind)
	}
	assert.Nil(t, Wireframe(sc, levelView(), vector.Size{}))
}

func TestWireframeClipsAtNearPlane(t *testing.T) {
	// camera sits at z=-1000; this box spans it
	sc := Scene{Boxes: []Box{{Center: vector.Vec3{Z: -1000}, Size: vector.Vec3{X: 10, Y: 10, Z: 400}, Visible: true}}}
	segs := Wireframe(sc, levelView(), vector.Size{W: 100, H: 100})
	// the four depth edges survive clipped; the back face survives whole
	assert.Len(t, segs, 8)
}

func TestClipNear(t *testing.T) {
	a, b, ok := clipNear(vector.Vec3{Z: -1}, vector.Vec3{Z: 1})
	require.True(t, ok)
	assert.InDelta(t, NearPlane, a.Z, 1e-12)
	assert.Equal(t, 1.0, b.Z)

	_, _, ok = clipNear(vector.Vec3{Z: -1}, vector.Vec3{Z: -2})
	assert.False(t, ok)
}
