/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"roomplanner/internal/backend"
	"roomplanner/internal/config"
	"roomplanner/internal/domain"
	"roomplanner/internal/export"
	applog "roomplanner/internal/log"
	"roomplanner/internal/render"
	"roomplanner/internal/scene"
	"roomplanner/internal/storage"
	"roomplanner/internal/ui"
)

func (c *cli) openLibrary() (*storage.Library, error) {
	root, _ := filepath.Abs(c.cfg.General.DataDir)
	c.log.Debug("open library", slog.String("root", root))
	c.sess.Root = root
	return storage.OpenLibrary(c.ctx, root)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid design id %q", s)
	}
	return id, nil
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = v
	}
	return out, nil
}

func (c *cli) cmdNew(args []string) error {
	if len(args) < 1 {
		return usageError("new requires <name>")
	}
	room := domain.DefaultRoom()
	if len(args) >= 4 {
		dims, err := parseFloats(args[1:4])
		if err != nil {
			return err
		}
		r, err := domain.NewRoom(dims[0], dims[1], dims[2], room.Shape, room.FloorColor, room.WallColor)
		if err != nil {
			return err
		}
		room = r
	}
	lib, err := c.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	ctrl := scene.New(c.cfg.SceneConfig(), scene.WithMapper(c.cfg.Mapper()))
	d := ctrl.CreateDesign(room, args[0], c.cfg.General.Owner)
	if err := lib.Save(c.ctx, &d); err != nil {
		return err
	}
	fmt.Printf("Created design %d %q (%.2f x %.2f x %.2f m)\n", d.ID, d.Name, room.Width, room.Length, room.Height)
	return nil
}

func (c *cli) cmdList(args []string) error {
	owner := ""
	if len(args) > 0 {
		owner = args[0]
	}
	lib, err := c.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	entries, err := lib.List(c.ctx, owner)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No designs.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%4d  %-24s %-12s %3d items  %6.2f m2  %s\n", e.ID, e.Name, e.Owner, e.FurnitureCount, e.Area, e.UpdatedAt.Local().Format(time.DateTime))
	}
	return nil
}

func (c *cli) cmdShow(args []string) error {
	if len(args) < 1 {
		return usageError("show requires <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	lib, err := c.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	d, err := lib.Load(c.ctx, id)
	if err != nil {
		return err
	}
	r := d.Room
	fmt.Printf("Design %d: %s\n", d.ID, d.Name)
	fmt.Printf("Owner: %s\n", d.Owner)
	fmt.Printf("Room: %.2f x %.2f x %.2f m %s, floor %s, walls %s\n", r.Width, r.Length, r.Height, r.Shape, r.FloorColor, r.WallColor)
	fmt.Printf("Placements: %d\n", len(d.Furniture))
	for _, f := range d.Furniture {
		fmt.Printf("  #%d %-9s %.2fx%.2fx%.2f m at (%d,%d) rot %.0f° %s\n", f.ID, f.Type, f.Width, f.Length, f.Height, f.Position.X, f.Position.Y, f.Rotation, f.Color)
	}
	return nil
}

func (c *cli) cmdPlace(args []string) error {
	if len(args) < 4 {
		return usageError("place requires <id> <TYPE> <x> <y>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	t, err := domain.ParseFurnitureType(args[1])
	if err != nil {
		return err
	}
	nums, err := parseFloats(args[2:min(len(args), 5)])
	if err != nil {
		return err
	}
	lib, err := c.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	d, err := lib.Load(c.ctx, id)
	if err != nil {
		return err
	}

	ctrl := scene.New(c.cfg.SceneConfig(), scene.WithMapper(c.cfg.Mapper()), scene.WithLogger(applog.WithComponent("scene")))
	ctrl.SetCurrentDesign(d)
	c.sess.Design = func() (domain.Design, bool) { return ctrl.CurrentDesign(), true }
	f, ok := ctrl.Place(domain.Template(t), domain.Point{X: int32(nums[0]), Y: int32(nums[1])})
	if !ok {
		return errors.New("placement rejected")
	}
	if len(nums) > 2 {
		ctrl.Rotate(f.ID, nums[2])
		f, _ = ctrl.Get(f.ID)
	}
	out := ctrl.CurrentDesign()
	if err := lib.Save(c.ctx, &out); err != nil {
		return err
	}
	ctrl.MarkPersisted(out.ID)
	fmt.Printf("Placed %s #%d at (%d,%d) rot %.0f°\n", f.Type, f.ID, f.Position.X, f.Position.Y, f.Rotation)
	return nil
}

// cmdScene runs the render loop headlessly with the logging renderer.
func (c *cli) cmdScene(args []string) error {
	if len(args) < 1 {
		return usageError("scene requires <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	cam, err := parseFloats(args[1:min(len(args), 4)])
	if err != nil {
		return err
	}
	lib, err := c.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	d, err := lib.Load(c.ctx, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.ctx)
	defer cancel()
	var ctrl *scene.Controller
	rc := render.NewContext(render.SourceFunc(func() render.Frame { return ctrl.Frame() }),
		render.LogRenderer{Log: applog.WithComponent("render")},
		render.Options{Mapper: c.cfg.Mapper(), Logger: applog.WithComponent("render")})
	ctrl = scene.New(c.cfg.SceneConfig(), scene.WithMapper(c.cfg.Mapper()), scene.WithNotifier(rc))
	ctrl.SetCurrentDesign(d)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rc.Run(gctx) })
	if err := rc.WaitReady(ctx, c.cfg.Render.InitTimeout()); err != nil {
		cancel()
		_ = g.Wait()
		return err
	}
	for i, apply := range []func(float64){ctrl.RotateCamera, ctrl.TiltCamera, ctrl.ZoomCamera} {
		if i < len(cam) {
			apply(cam[i])
		}
	}
	target := ctrl.Frame().Seq
	deadline := time.Now().Add(c.cfg.Render.InitTimeout())
	for rc.Stats().LastSeq < target && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}

	sc := render.Build(ctrl.Frame(), c.cfg.Mapper())
	v := ctrl.Camera()
	st := rc.Stats()
	fmt.Printf("Scene for design %d: %d boxes (%d visible), camera yaw %.0f pitch %.0f distance %.0f\n",
		d.ID, len(sc.Boxes), len(sc.Visible()), v.Yaw, v.Pitch, v.Distance)
	fmt.Printf("Render loop: %d requested, %d coalesced, %d rendered\n", st.Requested, st.Coalesced, st.Rendered)
	return nil
}

func (c *cli) cmdExport(args []string) error {
	if len(args) < 3 {
		return usageError("export requires <id> <format> <out>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	lib, err := c.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	d, err := lib.Load(c.ctx, id)
	if err != nil {
		return err
	}
	out, m := args[2], c.cfg.Mapper()
	switch strings.ToLower(args[1]) {
	case "png":
		err = export.ExportPNG(d, out, export.PNGOptions{Labels: true, Mapper: m})
	case "pdf":
		err = export.ExportPDF(d, out, export.PDFOptions{Dimensions: true, Labels: true, Mapper: m})
	case "svg":
		err = export.ExportSVG(d, out, export.SVGOptions{Labels: true, Mapper: m})
	case "web", "print":
		var written []string
		written, err = export.BatchExport(d, export.BatchOptions{Preset: export.PresetName(strings.ToLower(args[1])), OutDir: out, Mapper: m})
		for _, p := range written {
			fmt.Println("Wrote", p)
		}
		return err
	default:
		return usageError("unknown export format " + args[1])
	}
	if err != nil {
		return err
	}
	fmt.Println("Wrote", out)
	return nil
}

func (c *cli) cmdDelete(args []string) error {
	if len(args) < 1 {
		return usageError("delete requires <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	lib, err := c.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	if err := lib.Delete(c.ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted design %d\n", id)
	return nil
}

// openStore picks Postgres when configured, else the local library.
func (c *cli) openStore(ctx context.Context) (backend.Store, func(), error) {
	if !c.cfg.Backend.UsePostgres {
		lib, err := c.openLibrary()
		if err != nil {
			return nil, nil, err
		}
		return lib, func() { _ = lib.Close() }, nil
	}
	dsn, err := c.cfg.Backend.DSN(c.pw)
	if err != nil {
		return nil, nil, err
	}
	if err := backend.Migrate(ctx, dsn); err != nil {
		return nil, nil, err
	}
	pg, err := backend.OpenPG(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

func (c *cli) cmdServe(_ []string) error {
	ctx, stop := signal.NotifyContext(c.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	app := backend.NewServer(store, backend.Options{
		Logger:    applog.WithComponent("backend"),
		Scene:     c.cfg.SceneConfig(),
		Mapper:    c.cfg.Mapper(),
		AccessLog: true,
	})
	addr := c.cfg.Backend.Addr
	c.log.Info("serving design API", slog.String("addr", addr), slog.Bool("postgres", c.cfg.Backend.UsePostgres))
	fmt.Println("Listening on", addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	c.log.Info("server stopped")
	return nil
}

func (c *cli) cmdPull(args []string) error {
	if len(args) < 2 {
		return usageError("pull requires <url> <id>")
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
	defer cancel()
	d, err := backend.NewClient(args[0]).GetDesign(ctx, id)
	if err != nil {
		return err
	}
	lib, err := c.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	remote := d.ID
	d.ID, d.StableID = 0, ""
	if err := lib.Save(ctx, &d); err != nil {
		return err
	}
	fmt.Printf("Pulled remote design %d as local design %d %q\n", remote, d.ID, d.Name)
	return nil
}

func (c *cli) cmdPush(args []string) error {
	if len(args) < 2 {
		return usageError("push requires <url> <id>")
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	lib, err := c.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	d, err := lib.Load(c.ctx, id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
	defer cancel()
	d.ID, d.StableID = 0, ""
	if err := backend.NewClient(args[0]).PutDesign(ctx, &d); err != nil {
		return err
	}
	fmt.Printf("Pushed local design %d as remote design %d\n", id, d.ID)
	return nil
}

func (c *cli) cmdConfig(args []string) error {
	if len(args) < 1 {
		return usageError("config requires show|path|set-db-password|forget-db-password")
	}
	switch args[0] {
	case "show":
		out, err := yaml.Marshal(c.cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		if c.pw != "" {
			fmt.Println("# database password: stored in OS keychain")
		}
	case "path":
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(p)
	case "set-db-password":
		if len(args) < 2 {
			return usageError("set-db-password requires <pw>")
		}
		if err := config.Save(c.cfg, args[1]); err != nil {
			return err
		}
		fmt.Println("Saved config; database password stored in OS keychain.")
	case "forget-db-password":
		if err := config.ForgetPassword(); err != nil {
			return err
		}
		fmt.Println("Removed database password from OS keychain.")
	default:
		return usageError("unknown config command " + args[0])
	}
	return nil
}

func (c *cli) cmdUI(args []string) error {
	id := 0
	if len(args) > 0 {
		v, err := parseID(args[0])
		if err != nil {
			return err
		}
		id = v
	}
	lib, err := c.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	return ui.Run(ui.Options{Config: c.cfg, Library: lib, DesignID: id})
}
