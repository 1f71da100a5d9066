/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomplanner/internal/domain"
	"roomplanner/internal/layout"
	applog "roomplanner/internal/log"
	"roomplanner/internal/visibility"
)

type countingNotifier struct{ n int }

func (c *countingNotifier) Request() { c.n++ }

func newController(t *testing.T) (*Controller, *countingNotifier) {
	t.Helper()
	n := &countingNotifier{}
	c := New(DefaultConfig(), WithLogger(applog.Discard()), WithNotifier(n))
	return c, n
}

func withRoom(t *testing.T) (*Controller, *countingNotifier) {
	t.Helper()
	c, n := newController(t)
	c.CreateDesign(domain.DefaultRoom(), "Living room", "alice")
	return c, n
}

func positions(items []domain.Furniture) []domain.Point {
	out := make([]domain.Point, len(items))
	for i, f := range items {
		out[i] = f.Position
	}
	return out
}

func TestNoDesignIsNoop(t *testing.T) {
	c, _ := newController(t)
	assert.False(t, c.HasDesign())
	_, ok := c.Place(domain.Template(domain.Chair), domain.Point{})
	assert.False(t, ok)
	assert.False(t, c.Move(1, domain.Point{}))
	assert.False(t, c.Rotate(1, 90))
	assert.False(t, c.Undo())
	assert.False(t, c.ReplaceRoom(domain.DefaultRoom()))
	assert.Nil(t, c.Placements())
	assert.False(t, c.Frame().HasDesign)
	assert.Equal(t, domain.Design{}, c.CurrentDesign())
}

func TestCreateDesign(t *testing.T) {
	c, n := newController(t)
	before := n.n
	d := c.CreateDesign(domain.DefaultRoom(), "Study", "bob")
	assert.Equal(t, "Study", d.Name)
	assert.Equal(t, "bob", d.Owner)
	assert.Empty(t, d.Furniture)
	assert.True(t, c.HasDesign())
	assert.True(t, c.Dirty())
	assert.False(t, c.CanUndo())
	assert.Greater(t, n.n, before)
	assert.True(t, c.Frame().HasDesign)
}

func TestPlaceAndMoveClamp(t *testing.T) {
	c, _ := withRoom(t)
	chair, ok := c.Place(domain.Template(domain.Chair), domain.Point{X: 0, Y: 0})
	require.True(t, ok)
	assert.Equal(t, domain.Point{X: 0, Y: 0}, chair.Position)

	require.True(t, c.Move(chair.ID, domain.Point{X: 1000, Y: 1000}))
	require.True(t, c.EndGesture())
	got, _ := c.Get(chair.ID)
	assert.Equal(t, domain.Point{X: 350, Y: 450}, got.Position)
}

func TestPlaceClampsOutOfRoom(t *testing.T) {
	c, _ := withRoom(t)
	sofa, _ := c.Place(domain.Template(domain.Sofa), domain.Point{X: -40, Y: 9000})
	assert.Equal(t, domain.Point{X: 0, Y: 410}, sofa.Position)
}

func TestPlaceCentered(t *testing.T) {
	c, _ := withRoom(t)
	chair, _ := c.PlaceCentered(domain.Template(domain.Chair), domain.Point{X: 100, Y: 100})
	assert.Equal(t, domain.Point{X: 75, Y: 75}, chair.Position)
}

func TestUndoRedoThroughController(t *testing.T) {
	c, _ := withRoom(t)
	p1, _ := c.Place(domain.Template(domain.Chair), domain.Point{X: 10, Y: 10})
	p2, _ := c.Place(domain.Template(domain.Table), domain.Point{X: 200, Y: 200})
	require.NotEqual(t, p1.ID, p2.ID)

	require.True(t, c.Undo())
	require.Len(t, c.Placements(), 1)
	assert.Equal(t, p1.ID, c.Placements()[0].ID)

	require.True(t, c.Undo())
	assert.Empty(t, c.Placements())
	assert.False(t, c.Undo())

	require.True(t, c.Redo())
	require.Len(t, c.Placements(), 1)
	assert.Equal(t, p1.ID, c.Placements()[0].ID)

	c.Rotate(p1.ID, 15)
	assert.False(t, c.CanRedo())
	assert.False(t, c.Redo())
}

func TestDragCommitsOnce(t *testing.T) {
	c, _ := withRoom(t)
	chair, _ := c.Place(domain.Template(domain.Chair), domain.Point{X: 10, Y: 10})
	for i := int32(1); i <= 5; i++ {
		require.True(t, c.Move(chair.ID, domain.Point{X: 10 + 20*i, Y: 10}))
	}
	assert.True(t, c.InGesture())
	require.True(t, c.EndGesture())
	assert.False(t, c.InGesture())

	got, _ := c.Get(chair.ID)
	assert.Equal(t, domain.Point{X: 110, Y: 10}, got.Position)

	require.True(t, c.Undo())
	got, _ = c.Get(chair.ID)
	assert.Equal(t, domain.Point{X: 10, Y: 10}, got.Position)
}

func TestEndGestureWithoutChange(t *testing.T) {
	c, _ := withRoom(t)
	chair, _ := c.Place(domain.Template(domain.Chair), domain.Point{})
	require.True(t, c.BeginGesture(chair.ID))
	assert.False(t, c.EndGesture())
	assert.False(t, c.EndGesture())
	require.True(t, c.Undo())
	assert.Empty(t, c.Placements())
}

func TestCancelGestureReverts(t *testing.T) {
	c, _ := withRoom(t)
	chair, _ := c.Place(domain.Template(domain.Chair), domain.Point{X: 10, Y: 10})
	c.Move(chair.ID, domain.Point{X: 300, Y: 300})
	require.True(t, c.CancelGesture())
	got, _ := c.Get(chair.ID)
	assert.Equal(t, domain.Point{X: 10, Y: 10}, got.Position)
	assert.False(t, c.CancelGesture())
	require.True(t, c.Undo())
	assert.Empty(t, c.Placements())
}

func TestOtherEditEndsPendingGesture(t *testing.T) {
	c, _ := withRoom(t)
	chair, _ := c.Place(domain.Template(domain.Chair), domain.Point{X: 10, Y: 10})
	c.Move(chair.ID, domain.Point{X: 50, Y: 50})
	require.True(t, c.Rotate(chair.ID, 90))
	assert.False(t, c.InGesture())

	require.True(t, c.Undo())
	got, _ := c.Get(chair.ID)
	assert.Equal(t, domain.Point{X: 50, Y: 50}, got.Position)
	assert.Equal(t, 0.0, got.Rotation)
}

func TestMoveSwitchesItem(t *testing.T) {
	c, _ := withRoom(t)
	a, _ := c.Place(domain.Template(domain.Chair), domain.Point{X: 0, Y: 0})
	b, _ := c.Place(domain.Template(domain.Chair), domain.Point{X: 100, Y: 100})
	c.Move(a.ID, domain.Point{X: 20, Y: 0})
	c.Move(b.ID, domain.Point{X: 120, Y: 100})
	c.EndGesture()
	require.True(t, c.Undo())
	assert.Equal(t, []domain.Point{{X: 20, Y: 0}, {X: 100, Y: 100}}, positions(c.Placements()))
}

func TestUnknownIDs(t *testing.T) {
	c, _ := withRoom(t)
	c.Place(domain.Template(domain.Chair), domain.Point{})
	c.MarkPersisted(1)
	assert.False(t, c.Move(99, domain.Point{}))
	assert.False(t, c.Rotate(99, 10))
	assert.False(t, c.Recolor(99, domain.White))
	assert.False(t, c.Remove(99))
	assert.False(t, c.Dirty())
	assert.False(t, c.InGesture())
}

func TestRecolorAndRemove(t *testing.T) {
	c, _ := withRoom(t)
	chair, _ := c.Place(domain.Template(domain.Chair), domain.Point{})
	require.True(t, c.Recolor(chair.ID, domain.RGB{R: 255}))
	got, _ := c.Get(chair.ID)
	assert.Equal(t, domain.RGB{R: 255}, got.Color)
	require.True(t, c.Remove(chair.ID))
	_, ok := c.FindAt(domain.Point{X: 5, Y: 5})
	assert.False(t, ok)
	require.True(t, c.Undo())
	found, ok := c.FindAt(domain.Point{X: 5, Y: 5})
	require.True(t, ok)
	assert.Equal(t, chair.ID, found.ID)
}

func TestDirtyLifecycle(t *testing.T) {
	c, _ := withRoom(t)
	c.MarkPersisted(7)
	assert.False(t, c.Dirty())
	assert.Equal(t, 7, c.CurrentDesign().ID)

	c.RotateCamera(30)
	c.SetWallVisibility("ceiling", true)
	assert.False(t, c.Dirty())

	c.Place(domain.Template(domain.Bed), domain.Point{})
	assert.True(t, c.Dirty())
	c.MarkPersisted(0)
	assert.False(t, c.Dirty())
	assert.Equal(t, 7, c.CurrentDesign().ID)

	c.Undo()
	assert.True(t, c.Dirty())
}

func TestSetCurrentDesign(t *testing.T) {
	c, _ := newController(t)
	chair := domain.Template(domain.Chair)
	chair.ID = 4
	chair.Position = domain.Point{X: 30, Y: 40}
	d := domain.Design{ID: 12, Name: "Loaded", Owner: "carol", Room: domain.DefaultRoom(), Furniture: []domain.Furniture{chair}}

	c.SetCurrentDesign(d)
	assert.False(t, c.Dirty())
	assert.False(t, c.CanUndo())
	cur := c.CurrentDesign()
	assert.Equal(t, 12, cur.ID)
	assert.Equal(t, d.Furniture, cur.Furniture)

	d.Furniture[0].Position = domain.Point{}
	got, _ := c.Get(4)
	assert.Equal(t, domain.Point{X: 30, Y: 40}, got.Position)

	next, _ := c.Place(domain.Template(domain.Chair), domain.Point{})
	assert.Equal(t, 5, next.ID)
}

func TestLoadModel(t *testing.T) {
	c, _ := newController(t)
	m := layout.New(domain.DefaultRoom())
	m.Add(domain.Template(domain.Sofa), domain.Point{X: 10, Y: 10})
	c.LoadModel(m)
	assert.True(t, c.HasDesign())
	assert.False(t, c.CanUndo())
	assert.Len(t, c.Placements(), 1)
	c.Remove(1)
	require.True(t, c.Undo())
	assert.Len(t, c.Placements(), 1)
}

func TestLoadModelStartsFreshDesign(t *testing.T) {
	c, _ := newController(t)
	c.CreateDesign(domain.DefaultRoom(), "Kitchen", "alice")
	c.Place(domain.Template(domain.Table), domain.Point{X: 20, Y: 20})
	c.MarkPersisted(7)

	other := layout.New(domain.DefaultRoom())
	other.Add(domain.Template(domain.Bed), domain.Point{X: 5, Y: 5})
	c.LoadModel(other)

	d := c.CurrentDesign()
	assert.Zero(t, d.ID)
	assert.Empty(t, d.StableID)
	assert.Empty(t, d.Name)
	assert.Empty(t, d.Owner)
	require.Len(t, d.Furniture, 1)
	assert.Equal(t, domain.Bed, d.Furniture[0].Type)
	assert.False(t, c.Dirty())
}

func TestLoadModelDoesNotShareCallerModel(t *testing.T) {
	c, _ := newController(t)
	other := layout.New(domain.DefaultRoom())
	other.Add(domain.Template(domain.Chair), domain.Point{X: 5, Y: 5})
	c.LoadModel(other)

	other.Add(domain.Template(domain.Sofa), domain.Point{X: 100, Y: 100})
	other.Remove(1)
	assert.Len(t, c.Placements(), 1)
	assert.Equal(t, domain.Chair, c.Placements()[0].Type)
	assert.False(t, c.CanUndo())

	_, ok := c.Place(domain.Template(domain.Table), domain.Point{X: 50, Y: 50})
	require.True(t, ok)
	require.Equal(t, 1, other.Len())
	assert.Equal(t, domain.Sofa, other.Placements()[0].Type)
}

func TestRotateRejectsNonFiniteDelta(t *testing.T) {
	c, n := withRoom(t)
	f, ok := c.Place(domain.Template(domain.Chair), domain.Point{})
	require.True(t, ok)
	require.True(t, c.Rotate(f.ID, 30))
	before := n.n
	for _, d := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.False(t, c.Rotate(f.ID, d))
	}
	got, _ := c.Get(f.ID)
	assert.InDelta(t, 30, got.Rotation, 1e-9)
	assert.Equal(t, before, n.n)
	assert.NoError(t, c.CurrentDesign().Validate())
}

func TestReplaceRoom(t *testing.T) {
	c, _ := withRoom(t)
	c.MarkPersisted(1)
	r := domain.DefaultRoom()
	r.Width = 6
	r.WallColor = domain.WallPalette[2]
	require.True(t, c.ReplaceRoom(r))
	assert.True(t, c.Dirty())
	assert.Equal(t, r, c.CurrentDesign().Room)
	assert.Equal(t, r, c.Frame().Room)
}

func TestCameraThroughController(t *testing.T) {
	c, n := withRoom(t)
	before := n.n
	c.RotateCamera(45)
	c.TiltCamera(500)
	for i := 0; i < 50; i++ {
		c.ZoomCamera(0.5)
	}
	v := c.Camera()
	assert.Equal(t, 45.0, v.Yaw)
	assert.Equal(t, 60.0, v.Pitch)
	assert.Equal(t, 100.0, v.Distance)
	assert.Equal(t, before+52, n.n)

	c.ResetCamera()
	v = c.Camera()
	assert.Equal(t, 0.0, v.Yaw)
	assert.Equal(t, 30.0, v.Pitch)
	assert.Equal(t, 1000.0, v.Distance)
}

func TestWallVisibilityThroughController(t *testing.T) {
	c, _ := withRoom(t)
	assert.True(t, c.SetWallVisibility("ceiling", true))
	assert.True(t, c.IsWallVisible("ceiling"))
	assert.False(t, c.IsWallVisible("nonexistent"))
	assert.False(t, c.SetWallVisibility("nonexistent", true))

	c.SetSurfaceVisible(visibility.Floor, false)
	assert.False(t, c.IsWallVisible("floor"))
	assert.False(t, c.Frame().Surfaces.Visible(visibility.Floor))
	assert.True(t, c.Surfaces().Visible(visibility.Ceiling))
}

func TestFramesAreImmutableSnapshots(t *testing.T) {
	c, _ := withRoom(t)
	chair, _ := c.Place(domain.Template(domain.Chair), domain.Point{X: 10, Y: 10})
	f1 := c.Frame()
	c.Move(chair.ID, domain.Point{X: 200, Y: 200})
	f2 := c.Frame()

	assert.Greater(t, f2.Seq, f1.Seq)
	assert.Equal(t, domain.Point{X: 10, Y: 10}, f1.Furniture[0].Position)
	assert.Equal(t, domain.Point{X: 200, Y: 200}, f2.Furniture[0].Position)
}
