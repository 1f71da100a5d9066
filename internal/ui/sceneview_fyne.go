//go:build fyne

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
	"context"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"roomplanner/internal/camera"
	"roomplanner/internal/domain"
	"roomplanner/internal/render"
	"roomplanner/internal/vector"
)

// SceneView draws the 3D wireframe of the last scene handed to it.
type SceneView struct {
	widget.BaseWidget

	scene render.Scene
	view  camera.View
	has   bool
}

func NewSceneView() *SceneView {
	v := &SceneView{}
	v.ExtendBaseWidget(v)
	return v
}

// SetScene replaces the displayed scene. Call it on the fyne goroutine.
func (v *SceneView) SetScene(sc render.Scene, view camera.View) {
	v.scene, v.view, v.has = sc, view, true
	v.Refresh()
}

// Segments projects the current scene into the widget's bounds.
func (v *SceneView) Segments() []render.Segment {
	if !v.has {
		return nil
	}
	s := v.Size()
	return render.Wireframe(v.scene, v.view, vector.Size{W: float64(s.Width), H: float64(s.Height)})
}

func (v *SceneView) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (v *SceneView) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 18, G: 18, B: 22, A: 255})
	return &sceneViewRenderer{v: v, bg: bg, objects: []fyne.CanvasObject{bg}}
}

type sceneViewRenderer struct {
	v       *SceneView
	bg      *canvas.Rectangle
	lines   []*canvas.Line
	objects []fyne.CanvasObject
}

func (r *sceneViewRenderer) Destroy()                     {}
func (r *sceneViewRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *sceneViewRenderer) MinSize() fyne.Size           { return r.v.MinSize() }

func (r *sceneViewRenderer) Refresh() {
	r.Layout(r.v.Size())
	canvas.Refresh(r.v)
}

func (r *sceneViewRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	segs := r.v.Segments()
	for len(r.lines) < len(segs) {
		l := canvas.NewLine(color.White)
		l.StrokeWidth = 1
		r.lines = append(r.lines, l)
	}
	r.objects = r.objects[:1]
	for i, s := range segs {
		l := r.lines[i]
		l.Position1 = fyne.NewPos(float32(s.A.X), float32(s.A.Y))
		l.Position2 = fyne.NewPos(float32(s.B.X), float32(s.B.Y))
		l.StrokeColor = segmentColor(s)
		l.StrokeWidth = 1
		if s.Kind == render.KindFurniture {
			l.StrokeWidth = 1.5
		}
		r.objects = append(r.objects, l)
	}
}

// segmentColor brightens dark fills so edges stay visible on the dark background.
func segmentColor(s render.Segment) color.Color {
	c := s.Color
	if int(c.R)+int(c.G)+int(c.B) < 150 {
		c = domain.LightGray
	}
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// wireframeRenderer is the render.Renderer behind a SceneView. It runs on the
// render loop and hands each scene to the fyne goroutine.
type wireframeRenderer struct {
	view *SceneView
	// do schedules fn on the UI goroutine; fyne.Do outside tests.
	do func(fn func())
}

func newWireframeRenderer(v *SceneView) wireframeRenderer {
	return wireframeRenderer{view: v, do: fyne.Do}
}

func (r wireframeRenderer) Setup(context.Context) error { return nil }

func (r wireframeRenderer) Render(ctx context.Context, sc render.Scene, f render.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	view := f.View
	r.do(func() { r.view.SetScene(sc, view) })
	return nil
}
