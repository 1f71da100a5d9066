/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package scene binds the layout model, its undo history, the camera and
// surface visibility behind the operation surface the editor UI drives.
//
// A Controller is single-writer: every method except Frame must be called
// from the same goroutine (the UI event loop). Frame may be called from any
// goroutine; it returns the last published immutable snapshot.
package scene

import (
	"log/slog"
	"math"
	"sync/atomic"

	"roomplanner/internal/camera"
	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
	"roomplanner/internal/layout"
	applog "roomplanner/internal/log"
	"roomplanner/internal/render"
	"roomplanner/internal/undo"
	"roomplanner/internal/visibility"
)

// Config groups the tunables of the controller's collaborators.
type Config struct {
	History undo.Config
	Camera  camera.Config
}

func DefaultConfig() Config {
	return Config{
		History: undo.Config{MaxDepth: undo.DefaultMaxDepth},
		Camera:  camera.DefaultConfig(),
	}
}

// Notifier receives payload-free redraw requests. *render.Context satisfies it.
type Notifier interface {
	Request()
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.log = l } }

func WithNotifier(n Notifier) Option { return func(c *Controller) { c.notify = n } }

func WithMapper(m coords.Mapper) Option { return func(c *Controller) { c.mapper = m } }

type gesture struct {
	id      int
	start   []domain.Furniture
	changed bool
}

type Controller struct {
	cfg    Config
	log    *slog.Logger
	mapper coords.Mapper
	notify Notifier

	meta    *domain.Design // metadata of the open design; furniture lives in model
	model   *layout.Model
	history *undo.History
	cam     *camera.State
	vis     *visibility.State
	dirty   bool
	drag    *gesture

	seq   uint64
	frame atomic.Pointer[render.Frame]
}

// New returns a controller with no open design.
func New(cfg Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:    cfg,
		mapper: coords.Default(),
		cam:    camera.New(cfg.Camera),
		vis:    visibility.New(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = applog.WithComponent("scene")
	}
	if c.mapper.Scale <= 0 {
		c.mapper = coords.Default()
	}
	c.publish()
	return c
}

func (c *Controller) Mapper() coords.Mapper { return c.mapper }

// CreateDesign opens a new empty design. It is dirty until persisted.
func (c *Controller) CreateDesign(room domain.Room, name, owner string) domain.Design {
	c.finishGesture()
	c.meta = &domain.Design{Name: name, Owner: owner, Room: room}
	c.install(layout.NewWithMapper(room, c.mapper))
	c.dirty = true
	c.log.Debug("design created", slog.String("name", name), slog.Float64("area", room.Area()))
	c.publish()
	return c.CurrentDesign()
}

// SetCurrentDesign opens d. Its furniture becomes the only undo entry.
func (c *Controller) SetCurrentDesign(d domain.Design) {
	c.finishGesture()
	meta := d.Clone()
	meta.Furniture = nil
	c.meta = &meta
	c.install(layout.FromDesign(d, c.mapper))
	c.dirty = false
	c.log.Debug("design opened", slog.Int("design", d.ID), slog.Int("furniture", len(d.Furniture)))
	c.publish()
}

// LoadModel opens a copy of an externally built model as a new, unsaved
// design. The caller keeps ownership of m.
func (c *Controller) LoadModel(m *layout.Model) {
	c.finishGesture()
	c.meta = &domain.Design{Room: m.Room()}
	own := layout.NewWithMapper(m.Room(), c.mapper)
	own.Restore(m.Placements())
	c.install(own)
	c.dirty = false
	c.log.Debug("model loaded", slog.Int("furniture", own.Len()))
	c.publish()
}

func (c *Controller) install(m *layout.Model) {
	c.model = m
	c.history = undo.New(c.cfg.History)
	c.history.Seed(m.Snapshot())
}

func (c *Controller) HasDesign() bool { return c.model != nil }

// CurrentDesign returns a detached copy of the open design, or the zero
// Design when none is open.
func (c *Controller) CurrentDesign() domain.Design {
	if c.model == nil {
		return domain.Design{}
	}
	d := *c.meta
	d.Room = c.model.Room()
	d.Furniture = c.model.Placements()
	return d
}

// ReplaceRoom swaps the room geometry and colors. Placements are untouched.
func (c *Controller) ReplaceRoom(r domain.Room) bool {
	if c.model == nil {
		return false
	}
	c.finishGesture()
	c.model.ReplaceRoom(r)
	c.meta.Room = r
	c.dirty = true
	c.publish()
	return true
}

// Place adds a copy of template at pos, clamped into the room.
func (c *Controller) Place(template domain.Furniture, pos domain.Point) (domain.Furniture, bool) {
	if c.model == nil {
		return domain.Furniture{}, false
	}
	c.finishGesture()
	pos = c.mapper.ClampFurniture(template, pos, c.model.Room())
	f := c.model.Add(template, pos)
	c.commit("place", slog.Int("id", f.ID), slog.String("type", f.Type.String()))
	return f, true
}

// PlaceCentered places template so its footprint is centered on click.
func (c *Controller) PlaceCentered(template domain.Furniture, click domain.Point) (domain.Furniture, bool) {
	return c.Place(template, coords.CenterOn(click, c.mapper.PixelSize(template)))
}

// BeginGesture starts a drag of id. A pending gesture on another item is
// committed first.
func (c *Controller) BeginGesture(id int) bool {
	if c.model == nil {
		return false
	}
	if c.drag != nil && c.drag.id == id {
		return true
	}
	c.finishGesture()
	if _, ok := c.model.Get(id); !ok {
		c.log.Warn("gesture on unknown id", slog.Int("id", id))
		return false
	}
	c.drag = &gesture{id: id, start: c.model.Snapshot()}
	return true
}

func (c *Controller) InGesture() bool { return c.drag != nil }

// Move is a drag-intermediate update: it clamps pos into the room and updates
// the layout without touching history. It begins a gesture if none is active.
func (c *Controller) Move(id int, pos domain.Point) bool {
	if !c.BeginGesture(id) {
		return false
	}
	f, _ := c.model.Get(id)
	pos = c.mapper.ClampFurniture(f, pos, c.model.Room())
	if pos == f.Position {
		return true
	}
	c.model.Move(id, pos)
	c.drag.changed = true
	c.publish()
	return true
}

// EndGesture commits the pending gesture. It reports whether a snapshot was
// recorded.
func (c *Controller) EndGesture() bool { return c.finishGesture() }

// CancelGesture reverts the layout to where the gesture started.
func (c *Controller) CancelGesture() bool {
	if c.drag == nil {
		return false
	}
	g := c.drag
	c.drag = nil
	if g.changed {
		c.model.Restore(g.start)
		c.publish()
	}
	c.log.Debug("gesture cancelled", slog.Int("id", g.id))
	return true
}

func (c *Controller) finishGesture() bool {
	if c.drag == nil {
		return false
	}
	g := c.drag
	c.drag = nil
	if !g.changed {
		return false
	}
	c.commit("move", slog.Int("id", g.id))
	return true
}

func (c *Controller) Rotate(id int, deltaDegrees float64) bool {
	if math.IsNaN(deltaDegrees) || math.IsInf(deltaDegrees, 0) {
		c.log.Warn("non-finite rotation ignored", slog.Int("id", id))
		return false
	}
	return c.edit("rotate", id, func() bool { return c.model.Rotate(id, deltaDegrees) })
}

func (c *Controller) Recolor(id int, rgb domain.RGB) bool {
	return c.edit("recolor", id, func() bool { return c.model.Recolor(id, rgb) })
}

func (c *Controller) Remove(id int) bool {
	return c.edit("remove", id, func() bool { return c.model.Remove(id) })
}

func (c *Controller) edit(op string, id int, fn func() bool) bool {
	if c.model == nil {
		return false
	}
	c.finishGesture()
	if !fn() {
		c.log.Warn("unknown id", slog.String("op", op), slog.Int("id", id))
		return false
	}
	c.commit(op, slog.Int("id", id))
	return true
}

func (c *Controller) commit(op string, attrs ...any) {
	c.history.Commit(c.model)
	c.dirty = true
	c.log.Debug(op, attrs...)
	c.publish()
}

func (c *Controller) Undo() bool { return c.step("undo", c.historyUndo) }
func (c *Controller) Redo() bool { return c.step("redo", c.historyRedo) }

func (c *Controller) historyUndo() bool { return c.history.Undo(c.model) }
func (c *Controller) historyRedo() bool { return c.history.Redo(c.model) }

func (c *Controller) step(op string, fn func() bool) bool {
	if c.model == nil {
		return false
	}
	c.finishGesture()
	if !fn() {
		return false
	}
	c.dirty = true
	c.log.Debug(op, slog.Int("furniture", c.model.Len()))
	c.publish()
	return true
}

func (c *Controller) CanUndo() bool { return c.history != nil && c.history.CanUndo() }
func (c *Controller) CanRedo() bool { return c.history != nil && c.history.CanRedo() }

// FindAt returns the topmost placement whose un-rotated footprint contains p.
func (c *Controller) FindAt(p domain.Point) (domain.Furniture, bool) {
	if c.model == nil {
		return domain.Furniture{}, false
	}
	return c.model.FindAt(p)
}

func (c *Controller) Placements() []domain.Furniture {
	if c.model == nil {
		return nil
	}
	return c.model.Placements()
}

func (c *Controller) Get(id int) (domain.Furniture, bool) {
	if c.model == nil {
		return domain.Furniture{}, false
	}
	return c.model.Get(id)
}

// Dirty reports unsaved committed changes.
func (c *Controller) Dirty() bool { return c.dirty }

// MarkPersisted acknowledges a save; id is the identifier the store assigned.
func (c *Controller) MarkPersisted(id int) {
	if c.meta == nil {
		return
	}
	if id > 0 {
		c.meta.ID = id
	}
	c.dirty = false
	c.publish()
}

// Frame returns the latest published frame. Safe for concurrent use.
func (c *Controller) Frame() render.Frame {
	if f := c.frame.Load(); f != nil {
		return *f
	}
	return render.Frame{}
}

func (c *Controller) publish() {
	c.seq++
	f := &render.Frame{
		Seq:      c.seq,
		View:     c.cam.View(),
		Surfaces: c.vis.Snapshot(),
	}
	if c.model != nil {
		f.HasDesign = true
		f.Room = c.model.Room()
		f.Furniture = c.model.Placements()
	}
	c.frame.Store(f)
	if c.notify != nil {
		c.notify.Request()
	}
}
