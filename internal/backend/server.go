/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
	applog "roomplanner/internal/log"
	"roomplanner/internal/render"
	"roomplanner/internal/scene"
	"roomplanner/internal/storage"
	"roomplanner/internal/vector"
	"roomplanner/internal/version"
)

// Options configures NewServer. Zero values select defaults.
type Options struct {
	Logger *slog.Logger
	Scene  scene.Config
	Mapper coords.Mapper
	// AccessLog enables per-request logging to stdout.
	AccessLog bool
	// RequestTimeout bounds store calls made by a handler.
	RequestTimeout time.Duration
}

type server struct {
	store   Store
	log     *slog.Logger
	scene   scene.Config
	mapper  coords.Mapper
	timeout time.Duration
}

// NewServer wires the design API routes onto a fresh fiber app.
func NewServer(store Store, opts Options) *fiber.App {
	s := &server{store: store, log: opts.Logger, scene: opts.Scene, mapper: opts.Mapper, timeout: opts.RequestTimeout}
	if s.log == nil {
		s.log = applog.WithComponent("backend")
	}
	if s.mapper.Scale <= 0 {
		s.mapper = coords.Default()
	}
	if s.timeout <= 0 {
		s.timeout = 10 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:      "roomplanner",
		ErrorHandler: s.handleError,
	})
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	app.Get("/healthz", s.health)
	app.Get("/version", s.version)
	app.Get("/api/catalog", s.catalog)

	api := app.Group("/api/designs")
	api.Get("/", s.listDesigns)
	api.Post("/", s.createDesign)
	api.Get("/:id", s.getDesign)
	api.Put("/:id", s.putDesign)
	api.Delete("/:id", s.deleteDesign)
	api.Get("/:id/scene", s.designScene)
	return app
}

// DesignSummary is the list projection of a stored design.
type DesignSummary struct {
	ID             int       `json:"id"`
	StableID       string    `json:"stableId"`
	Name           string    `json:"name"`
	Owner          string    `json:"ownerIdentifier"`
	FurnitureCount int       `json:"furnitureCount"`
	Area           float64   `json:"area"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func summaryOf(e storage.Entry) DesignSummary {
	return DesignSummary{
		ID:             e.ID,
		StableID:       e.StableID,
		Name:           e.Name,
		Owner:          e.Owner,
		FurnitureCount: e.FurnitureCount,
		Area:           e.Area,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// SceneBox is one solid of a rendered scene. Sizes and centers are world units.
type SceneBox struct {
	Kind    string     `json:"kind"`
	Surface string     `json:"surface,omitempty"`
	ItemID  int        `json:"itemId,omitempty"`
	Label   string     `json:"label,omitempty"`
	Center  [3]float64 `json:"center"`
	Size    [3]float64 `json:"size"`
	Yaw     float64    `json:"yaw"`
	Color   string     `json:"color"`
	Visible bool       `json:"visible"`
}

// SceneSegment is a projected wireframe edge in viewport pixels.
type SceneSegment struct {
	A     [2]float64 `json:"a"`
	B     [2]float64 `json:"b"`
	Color string     `json:"color"`
}

// SceneCamera echoes the camera the scene was built for.
type SceneCamera struct {
	Yaw      float64 `json:"yaw"`
	Pitch    float64 `json:"pitch"`
	Distance float64 `json:"distance"`
}

// SceneResponse is the body of GET /api/designs/:id/scene.
type SceneResponse struct {
	DesignID  int            `json:"designId"`
	Room      [3]float64     `json:"room"`
	Camera    SceneCamera    `json:"camera"`
	Boxes     []SceneBox     `json:"boxes"`
	Wireframe []SceneSegment `json:"wireframe,omitempty"`
}

func (s *server) handleError(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, storage.ErrSchema), errors.Is(err, domain.ErrInvalidGeometry):
		code = fiber.StatusBadRequest
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", slog.String("method", c.Method()), slog.String("path", c.Path()), slog.Any("err", err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *server) ctx(c fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), s.timeout)
}

func (s *server) health(c fiber.Ctx) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		ctx, cancel := s.ctx(c)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *server) version(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"version": version.String()})
}

func (s *server) catalog(c fiber.Ctx) error {
	return c.JSON(domain.Catalog())
}

func (s *server) listDesigns(c fiber.Ctx) error {
	ctx, cancel := s.ctx(c)
	defer cancel()
	entries, err := s.store.List(ctx, c.Query("owner"))
	if err != nil {
		return err
	}
	out := make([]DesignSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, summaryOf(e))
	}
	return c.JSON(out)
}

func (s *server) createDesign(c fiber.Ctx) error {
	d, err := storage.DecodeDesign(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	d.ID = 0
	ctx, cancel := s.ctx(c)
	defer cancel()
	if err := s.store.Save(ctx, &d); err != nil {
		return err
	}
	c.Set(fiber.HeaderLocation, fmt.Sprintf("/api/designs/%d", d.ID))
	return c.Status(fiber.StatusCreated).JSON(d)
}

func (s *server) getDesign(c fiber.Ctx) error {
	id, err := designID(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.ctx(c)
	defer cancel()
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (s *server) putDesign(c fiber.Ctx) error {
	id, err := designID(c)
	if err != nil {
		return err
	}
	d, err := storage.DecodeDesign(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	d.ID = id
	ctx, cancel := s.ctx(c)
	defer cancel()
	if err := s.store.Save(ctx, &d); err != nil {
		return err
	}
	return c.JSON(d)
}

func (s *server) deleteDesign(c fiber.Ctx) error {
	id, err := designID(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.ctx(c)
	defer cancel()
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// designScene builds the 3D scene for a stored design. Query parameters:
// yaw, pitch (degrees, applied from the reset camera), zoom (distance factor),
// show and hide (comma separated surface names) and viewport (WxH, adds the
// projected wireframe).
func (s *server) designScene(c fiber.Ctx) error {
	id, err := designID(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.ctx(c)
	defer cancel()
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	ctrl := scene.New(s.scene, scene.WithLogger(s.log), scene.WithMapper(s.mapper))
	ctrl.SetCurrentDesign(d)
	for _, p := range []struct {
		name  string
		apply func(float64)
	}{
		{"yaw", ctrl.RotateCamera},
		{"pitch", ctrl.TiltCamera},
		{"zoom", ctrl.ZoomCamera},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s %q", p.name, raw))
		}
		p.apply(v)
	}
	for _, p := range []struct {
		name    string
		visible bool
	}{{"show", true}, {"hide", false}} {
		for _, name := range splitList(c.Query(p.name)) {
			if !ctrl.SetWallVisibility(name, p.visible) {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown surface %q", name))
			}
		}
	}

	frame := ctrl.Frame()
	sc := render.Build(frame, s.mapper)
	resp := SceneResponse{
		DesignID: d.ID,
		Room:     [3]float64{sc.Room.X, sc.Room.Y, sc.Room.Z},
		Camera:   SceneCamera{Yaw: frame.View.Yaw, Pitch: frame.View.Pitch, Distance: frame.View.Distance},
		Boxes:    make([]SceneBox, 0, len(sc.Boxes)),
	}
	for _, b := range sc.Boxes {
		resp.Boxes = append(resp.Boxes, boxOf(b))
	}
	if raw := c.Query("viewport"); raw != "" {
		vp, err := parseViewport(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		for _, seg := range render.Wireframe(sc, frame.View, vp) {
			resp.Wireframe = append(resp.Wireframe, SceneSegment{
				A:     [2]float64{seg.A.X, seg.A.Y},
				B:     [2]float64{seg.B.X, seg.B.Y},
				Color: seg.Color.String(),
			})
		}
	}
	return c.JSON(resp)
}

func boxOf(b render.Box) SceneBox {
	out := SceneBox{
		Kind:    "furniture",
		ItemID:  b.ItemID,
		Label:   b.Label,
		Center:  [3]float64{b.Center.X, b.Center.Y, b.Center.Z},
		Size:    [3]float64{b.Size.X, b.Size.Y, b.Size.Z},
		Yaw:     b.Yaw,
		Color:   b.Color.String(),
		Visible: b.Visible,
	}
	if b.Kind == render.KindSurface {
		out.Kind = "surface"
		out.Surface = b.Surface.String()
		out.ItemID = 0
	}
	return out
}

func designID(c fiber.Ctx) (int, error) {
	raw := c.Params("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid design id %q", raw))
	}
	return id, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseViewport(s string) (vector.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return vector.Size{}, fmt.Errorf("invalid viewport %q, want WxH", s)
	}
	wv, err1 := strconv.Atoi(strings.TrimSpace(w))
	hv, err2 := strconv.Atoi(strings.TrimSpace(h))
	if err1 != nil || err2 != nil || wv <= 0 || hv <= 0 || wv > 16384 || hv > 16384 {
		return vector.Size{}, fmt.Errorf("invalid viewport %q, want WxH", s)
	}
	return vector.Size{W: float64(wv), H: float64(hv)}, nil
}
