/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
)

func sampleDesign() domain.Design {
	bed := domain.Template(domain.Bed) // 2.0 x 1.6
	bed.ID = 1
	bed.Color = domain.RGB{R: 200, G: 30, B: 30}
	bed.Position = domain.Point{X: 100, Y: 100}
	sofa := domain.Template(domain.Sofa) // 2.0 x 0.9
	sofa.ID = 2
	sofa.Rotation = 90
	sofa.Position = domain.Point{X: 150, Y: 300}
	return domain.Design{
		ID:        7,
		Name:      "Guest room",
		Owner:     "ana",
		Room:      domain.DefaultRoom(), // 4 x 5
		Furniture: []domain.Furniture{bed, sofa},
	}
}

func TestBuildPlanRotatesAboutCenter(t *testing.T) {
	p, err := buildPlan(sampleDesign(), coords.Default())
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if len(p.Items) != 2 {
		t.Fatalf("items: %d", len(p.Items))
	}
	bed := p.Items[0]
	if !near(bed.Corners[0].X, 1) || !near(bed.Corners[0].Y, 1) || !near(bed.Corners[2].X, 3) || !near(bed.Corners[2].Y, 2.6) {
		t.Fatalf("unrotated bed corners: %+v", bed.Corners)
	}
	sofa := p.Items[1]
	// 2.0 x 0.9 at (1.5, 3.0), center (2.5, 3.45); a quarter turn swaps the extents
	minX, maxX, minY, maxY := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, c := range sofa.Corners {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}
	if !near(maxX-minX, 0.9) || !near(maxY-minY, 2.0) {
		t.Fatalf("rotated sofa extents %.3f x %.3f", maxX-minX, maxY-minY)
	}
	if !near(sofa.Center.X, 2.5) || !near(sofa.Center.Y, 3.45) {
		t.Fatalf("sofa center moved: %+v", sofa.Center)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildPlanRejectsInvalidRoom(t *testing.T) {
	d := sampleDesign()
	d.Room.Length = 0
	if _, err := buildPlan(d, coords.Default()); err == nil {
		t.Fatalf("expected error for zero-length room")
	}
}

func TestRenderPNG(t *testing.T) {
	img, err := RenderPNG(sampleDesign(), PNGOptions{Labels: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 440 || got.Y != 540 {
		t.Fatalf("size %v, want 440x540", got)
	}
	if c := img.RGBAAt(5, 5); c != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("margin not white: %v", c)
	}
	floor := toRGBA(domain.LightGray)
	if c := img.RGBAAt(20+390, 20+10); c != floor {
		t.Fatalf("floor color %v, want %v", c, floor)
	}
	// inside the bed, away from its label
	if c := img.RGBAAt(20+110, 20+110); c != (color.RGBA{200, 30, 30, 255}) {
		t.Fatalf("bed fill %v", c)
	}
	// the rotated sofa covers x in [2.05, 2.95] m, so 2.2 m is inside and 1.6 m is floor
	if c := img.RGBAAt(20+220, 20+300); c != toRGBA(domain.DarkGray) {
		t.Fatalf("rotated sofa fill %v", c)
	}
	if c := img.RGBAAt(20+160, 20+345); c != floor {
		t.Fatalf("unrotated sofa extent still drawn: %v", c)
	}
}

func TestExportPNGWritesDecodableFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "plan.png")
	if err := ExportPNG(sampleDesign(), out, PNGOptions{PixelsPerMeter: 50, Margin: 5}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 210 || got.Y != 260 {
		t.Fatalf("size %v, want 210x260", got)
	}
}

func TestRenderSVG(t *testing.T) {
	b, err := RenderSVG(sampleDesign(), SVGOptions{Labels: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	s := string(b)
	for _, want := range []string{
		"<title>Guest room</title>",
		"data-id=\"1\" points=\"100,100 300,100 300,260 100,260\"",
		"fill=\"#c81e1e\"",
		">Bed</text>",
		">Sofa</text>",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("svg missing %q:\n%s", want, s)
		}
	}
	d := sampleDesign()
	d.Name = "A & B <x>"
	b, _ = RenderSVG(d, SVGOptions{})
	if !strings.Contains(string(b), "A &amp; B &lt;x&gt;") {
		t.Fatalf("title not escaped")
	}
}

func TestExportPDFCreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plan.pdf")
	if err := ExportPDF(sampleDesign(), out, PDFOptions{Dimensions: true, Labels: true, Grid: true}); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", b[:min(len(b), 8)])
	}
}

func TestBatchExportPresets(t *testing.T) {
	root := t.TempDir()
	d := sampleDesign()
	cases := []struct {
		preset PresetName
		want   []string
	}{
		{PresetWeb, []string{"png/design-7.png", "svg/design-7.svg"}},
		{PresetPrint, []string{"pdf/design-7.pdf", "png/design-7.png"}},
	}
	for _, tc := range cases {
		outDir := filepath.Join(root, string(tc.preset))
		written, err := BatchExport(d, BatchOptions{Preset: tc.preset, OutDir: outDir})
		if err != nil {
			t.Fatalf("batch export %s: %v", tc.preset, err)
		}
		if len(written) != len(tc.want) {
			t.Fatalf("%s wrote %v", tc.preset, written)
		}
		for _, rel := range tc.want {
			p := filepath.Join(outDir, filepath.FromSlash(rel))
			st, err := os.Stat(p)
			if err != nil {
				t.Fatalf("missing %s: %v", p, err)
			}
			if st.Size() <= 0 {
				t.Fatalf("empty file: %s", p)
			}
		}
	}
	if _, err := BatchExport(d, BatchOptions{OutDir: root, Formats: []string{"cbz"}}); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
