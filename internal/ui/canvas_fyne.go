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
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"roomplanner/internal/domain"
	"roomplanner/internal/export"
	"roomplanner/internal/scene"
	"roomplanner/internal/vector"
)

// LayoutCanvas is the top-down editor. It must only be used from the fyne
// goroutine since it drives the controller directly.
type LayoutCanvas struct {
	widget.BaseWidget

	ctrl     *scene.Controller
	armed    *domain.Furniture
	selected int
	dragging bool
	grab     vector.Pt // pointer offset from the dragged item's position, editor px

	// OnChanged runs after every edit or selection change.
	OnChanged func()
}

func NewLayoutCanvas(ctrl *scene.Controller) *LayoutCanvas {
	c := &LayoutCanvas{ctrl: ctrl}
	c.ExtendBaseWidget(c)
	return c
}

// Arm makes the next tap place a copy of template centered on the tap.
func (c *LayoutCanvas) Arm(template domain.Furniture) {
	t := template
	c.armed = &t
}

func (c *LayoutCanvas) Armed() bool { return c.armed != nil }

// Selected returns the id of the selected placement.
func (c *LayoutCanvas) Selected() (int, bool) {
	if c.selected == 0 {
		return 0, false
	}
	if _, ok := c.ctrl.Get(c.selected); !ok {
		return 0, false
	}
	return c.selected, true
}

func (c *LayoutCanvas) Select(id int) {
	c.selected = id
	c.changed()
}

func (c *LayoutCanvas) view() planView {
	s := c.Size()
	return fitPlan(vector.Size{W: float64(s.Width), H: float64(s.Height)}, c.ctrl.CurrentDesign().Room, c.ctrl.Mapper())
}

func (c *LayoutCanvas) editorPoint(pos fyne.Position) domain.Point {
	return c.view().toEditor(vector.Pt{X: float64(pos.X), Y: float64(pos.Y)})
}

func (c *LayoutCanvas) changed() {
	c.Refresh()
	if c.OnChanged != nil {
		c.OnChanged()
	}
}

func (c *LayoutCanvas) Tapped(e *fyne.PointEvent) {
	if !c.ctrl.HasDesign() {
		return
	}
	pt := c.editorPoint(e.Position)
	if c.armed != nil {
		t := *c.armed
		c.armed = nil
		if f, ok := c.ctrl.PlaceCentered(t, pt); ok {
			c.selected = f.ID
		}
		c.changed()
		return
	}
	c.selected = 0
	if f, ok := c.ctrl.FindAt(pt); ok {
		c.selected = f.ID
	}
	c.changed()
}

func (c *LayoutCanvas) Dragged(e *fyne.DragEvent) {
	if !c.ctrl.HasDesign() {
		return
	}
	pt := c.editorPoint(e.Position)
	if !c.dragging {
		start := c.editorPoint(e.Position.Subtract(e.Dragged))
		f, ok := c.ctrl.FindAt(start)
		if !ok || !c.ctrl.BeginGesture(f.ID) {
			return
		}
		c.dragging = true
		c.selected = f.ID
		c.grab = vector.Pt{X: float64(start.X - f.Position.X), Y: float64(start.Y - f.Position.Y)}
	}
	c.ctrl.Move(c.selected, domain.Point{
		X: int32(math.Round(float64(pt.X) - c.grab.X)),
		Y: int32(math.Round(float64(pt.Y) - c.grab.Y)),
	})
	c.changed()
}

func (c *LayoutCanvas) DragEnd() {
	if !c.dragging {
		return
	}
	c.dragging = false
	c.ctrl.EndGesture()
	c.changed()
}

func (c *LayoutCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 320) }

func (c *LayoutCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	plan := canvas.NewRaster(c.rasterize)
	r := &layoutRenderer{c: c, bg: bg, plan: plan}
	r.objects = []fyne.CanvasObject{bg, plan}
	for i := range r.sel {
		l := canvas.NewLine(color.RGBA{R: 0, G: 170, B: 255, A: 255})
		l.StrokeWidth = 2
		l.Hide()
		r.sel[i] = l
		r.objects = append(r.objects, l)
	}
	return r
}

// rasterize draws the plan at the raster's pixel size with the floor plan exporter.
func (c *LayoutCanvas) rasterize(w, h int) image.Image {
	if !c.ctrl.HasDesign() || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	d := c.ctrl.CurrentDesign()
	ppm := float64(w) / (d.Room.Width + 2*planMargin)
	img, err := export.RenderPNG(d, export.PNGOptions{
		PixelsPerMeter: ppm,
		Margin:         max(1, int(math.Round(planMargin*ppm))),
		Labels:         true,
		Mapper:         c.ctrl.Mapper(),
	})
	if err != nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return img
}

type layoutRenderer struct {
	c       *LayoutCanvas
	bg      *canvas.Rectangle
	plan    *canvas.Raster
	sel     [4]*canvas.Line
	objects []fyne.CanvasObject
}

func (r *layoutRenderer) Destroy()                     {}
func (r *layoutRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *layoutRenderer) MinSize() fyne.Size           { return r.c.MinSize() }

func (r *layoutRenderer) Refresh() {
	r.Layout(r.c.Size())
	canvas.Refresh(r.plan)
	canvas.Refresh(r.c)
}

func (r *layoutRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	if !r.c.ctrl.HasDesign() {
		r.plan.Hide()
		r.hideSelection()
		return
	}
	v := r.c.view()
	pr := v.planRect()
	r.plan.Show()
	r.plan.Move(fyne.NewPos(float32(pr.X), float32(pr.Y)))
	r.plan.Resize(fyne.NewSize(float32(pr.W), float32(pr.H)))

	id, ok := r.c.Selected()
	if !ok {
		r.hideSelection()
		return
	}
	f, _ := r.c.ctrl.Get(id)
	pts := v.outline(f)
	for i, l := range r.sel {
		a, b := pts[i], pts[(i+1)%len(pts)]
		l.Position1 = fyne.NewPos(float32(a.X), float32(a.Y))
		l.Position2 = fyne.NewPos(float32(b.X), float32(b.Y))
		l.Show()
	}
}

func (r *layoutRenderer) hideSelection() {
	for _, l := range r.sel {
		l.Hide()
	}
}
