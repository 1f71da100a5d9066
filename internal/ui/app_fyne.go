//go:build fyne && cgo

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
	"errors"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"roomplanner/internal/crash"
	"roomplanner/internal/domain"
	applog "roomplanner/internal/log"
	"roomplanner/internal/render"
	"roomplanner/internal/scene"
	"roomplanner/internal/visibility"
)

const (
	rotateStep = 15.0
	yawStep    = 15.0
	pitchStep  = 5.0
	zoomStep   = 1.25
)

// Run starts the Fyne-based desktop editor.
func Run(opts Options) error {
	if opts.Library == nil {
		return errors.New("ui: no design library")
	}
	l := applog.WithComponent("ui")
	l.Info("starting UI")
	cfg := opts.Config
	lib := opts.Library

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view := NewSceneView()
	var ctrl *scene.Controller
	rc := render.NewContext(
		render.SourceFunc(func() render.Frame { return ctrl.Frame() }),
		newWireframeRenderer(view),
		render.Options{Mapper: cfg.Mapper(), Logger: applog.WithComponent("render")},
	)
	ctrl = scene.New(cfg.SceneConfig(),
		scene.WithLogger(applog.WithComponent("scene")),
		scene.WithMapper(cfg.Mapper()),
		scene.WithNotifier(rc),
	)
	defer crash.Recover(&crash.Session{Root: lib.Root(), Design: func() (domain.Design, bool) {
		if ctrl == nil || !ctrl.HasDesign() {
			return domain.Design{}, false
		}
		return ctrl.CurrentDesign(), true
	}})

	if opts.DesignID > 0 {
		d, err := lib.Load(ctx, opts.DesignID)
		if err != nil {
			return fmt.Errorf("open design %d: %w", opts.DesignID, err)
		}
		ctrl.SetCurrentDesign(d)
	} else {
		ctrl.CreateDesign(domain.DefaultRoom(), "Untitled", cfg.General.Owner)
	}

	go func() {
		if err := rc.Run(ctx); err != nil {
			l.Error("render loop stopped", slog.Any("err", err))
		}
	}()

	fyneApp := app.NewWithID("roomplanner")
	w := fyneApp.NewWindow("Room Planner")
	prefs := fyneApp.Preferences()
	w.Resize(fyne.NewSize(
		float32(max(900, prefs.IntWithFallback("window.width", 1280))),
		float32(max(600, prefs.IntWithFallback("window.height", 800))),
	))

	status := widget.NewLabel("Ready")
	layoutCanvas := NewLayoutCanvas(ctrl)

	var refresh func()
	undoBtn := widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), func() { ctrl.Undo(); refresh() })
	redoBtn := widget.NewButtonWithIcon("Redo", theme.ContentRedoIcon(), func() { ctrl.Redo(); refresh() })
	withSelection := func(fn func(id int)) func() {
		return func() {
			if id, ok := layoutCanvas.Selected(); ok {
				fn(id)
				refresh()
			}
		}
	}
	rotLeft := widget.NewButton("Rotate -15°", withSelection(func(id int) { ctrl.Rotate(id, -rotateStep) }))
	rotRight := widget.NewButton("Rotate +15°", withSelection(func(id int) { ctrl.Rotate(id, rotateStep) }))
	deleteBtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), withSelection(func(id int) { ctrl.Remove(id) }))
	colorSelect := widget.NewSelect(paletteNames(), func(name string) {
		if c, ok := paletteColor(name); ok {
			withSelection(func(id int) { ctrl.Recolor(id, c) })()
		}
	})
	colorSelect.PlaceHolder = "Color"

	save := func() {
		d := ctrl.CurrentDesign()
		if err := lib.Save(ctx, &d); err != nil {
			dialog.ShowError(err, w)
			return
		}
		ctrl.MarkPersisted(d.ID)
		w.SetTitle(fmt.Sprintf("Room Planner - %s (#%d)", d.Name, d.ID))
		status.SetText(fmt.Sprintf("Saved design %d", d.ID))
		l.Info("design saved", slog.Int("design", d.ID))
	}
	saveBtn := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), save)

	refresh = func() {
		layoutCanvas.Refresh()
		if ctrl.CanUndo() {
			undoBtn.Enable()
		} else {
			undoBtn.Disable()
		}
		if ctrl.CanRedo() {
			redoBtn.Enable()
		} else {
			redoBtn.Disable()
		}
		_, sel := layoutCanvas.Selected()
		for _, b := range []*widget.Button{rotLeft, rotRight, deleteBtn} {
			if sel {
				b.Enable()
			} else {
				b.Disable()
			}
		}
		d := ctrl.CurrentDesign()
		dirty := ""
		if ctrl.Dirty() {
			dirty = " *"
		}
		status.SetText(fmt.Sprintf("%s%s: %d items, %.2f x %.2f m", d.Name, dirty, len(d.Furniture), d.Room.Width, d.Room.Length))
	}
	layoutCanvas.OnChanged = refresh

	catalog := container.NewVBox(widget.NewLabel("Furniture"), widget.NewSeparator())
	for _, t := range domain.Catalog() {
		tmpl := t
		catalog.Add(widget.NewButton(tmpl.Label(), func() {
			layoutCanvas.Arm(tmpl)
			status.SetText(fmt.Sprintf("Click in the room to place a %s", tmpl.Label()))
		}))
	}

	camButtons := container.NewGridWithColumns(4,
		widget.NewButton("⟲", func() { ctrl.RotateCamera(-yawStep) }),
		widget.NewButton("⟳", func() { ctrl.RotateCamera(yawStep) }),
		widget.NewButton("▲", func() { ctrl.TiltCamera(pitchStep) }),
		widget.NewButton("▼", func() { ctrl.TiltCamera(-pitchStep) }),
		widget.NewButton("+", func() { ctrl.ZoomCamera(1 / zoomStep) }),
		widget.NewButton("-", func() { ctrl.ZoomCamera(zoomStep) }),
		widget.NewButton("Reset", ctrl.ResetCamera),
	)
	surfaces := container.NewGridWithColumns(3)
	for _, s := range visibility.Surfaces() {
		surface := s
		chk := widget.NewCheck(surface.String(), func(v bool) { ctrl.SetSurfaceVisible(surface, v) })
		chk.SetChecked(ctrl.Surfaces().Visible(surface))
		surfaces.Add(chk)
	}
	right := container.NewBorder(nil, container.NewVBox(widget.NewLabel("Camera"), camButtons, widget.NewLabel("Surfaces"), surfaces), nil, nil, view)

	toolbar := container.NewHBox(undoBtn, redoBtn, widget.NewSeparator(), rotLeft, rotRight, colorSelect, deleteBtn, widget.NewSeparator(), saveBtn)
	split := container.NewHSplit(layoutCanvas, right)
	split.Offset = 0.55
	w.SetContent(container.NewBorder(toolbar, status, catalog, nil, split))

	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { ctrl.Undo(); refresh() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { ctrl.Redo(); refresh() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { save() })
	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			withSelection(func(id int) { ctrl.Remove(id) })()
		case fyne.KeyEscape:
			if ctrl.CancelGesture() {
				refresh()
			}
		}
	})

	w.SetCloseIntercept(func() {
		size := w.Canvas().Size()
		prefs.SetInt("window.width", int(size.Width))
		prefs.SetInt("window.height", int(size.Height))
		if !ctrl.Dirty() {
			w.Close()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Close without saving?", func(ok bool) {
			if ok {
				w.Close()
			}
		}, w)
	})
	w.SetOnClosed(cancel)

	if err := rc.WaitReady(ctx, cfg.Render.InitTimeout()); err != nil {
		l.Warn("render context not ready", slog.Any("err", err))
		status.SetText("3D view unavailable")
	}
	if d := ctrl.CurrentDesign(); d.ID > 0 {
		w.SetTitle(fmt.Sprintf("Room Planner - %s (#%d)", d.Name, d.ID))
	}
	refresh()
	w.ShowAndRun()
	return nil
}
