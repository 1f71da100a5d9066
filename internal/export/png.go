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
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	rast "golang.org/x/image/vector"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
	"roomplanner/internal/vector"
)

// PNGOptions controls PNG export. Zero values select defaults.
type PNGOptions struct {
	PixelsPerMeter float64 // default 100
	Margin         int     // pixels around the room, default 20
	Labels         bool
	// Mapper is the editor scale the placement positions were recorded at.
	Mapper coords.Mapper
}

func (o PNGOptions) normalized() PNGOptions {
	if o.PixelsPerMeter <= 0 {
		o.PixelsPerMeter = 100
	}
	if o.Margin <= 0 {
		o.Margin = 20
	}
	return o
}

// RenderPNG draws the floor plan of d into a new image.
func RenderPNG(d domain.Design, opt PNGOptions) (*image.RGBA, error) {
	opt = opt.normalized()
	p, err := buildPlan(d, opt.Mapper)
	if err != nil {
		return nil, err
	}
	ppm := opt.PixelsPerMeter
	roomW := int(math.Round(p.Room.Width * ppm))
	roomH := int(math.Round(p.Room.Length * ppm))
	pixW, pixH := roomW+2*opt.Margin, roomH+2*opt.Margin
	if pixW > 16384 || pixH > 16384 {
		return nil, fmt.Errorf("export: image %dx%d too large", pixW, pixH)
	}

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	ox, oy := opt.Margin, opt.Margin
	fillRect(img, ox, oy, ox+roomW-1, oy+roomH-1, toRGBA(p.Room.FloorColor))
	wall := toRGBA(domain.DarkGray)
	for i := 0; i < 3; i++ {
		strokeRect(img, ox-i, oy-i, ox+roomW-1+i, oy+roomH-1+i, wall)
	}

	toImg := func(pt vector.Pt) vector.Pt {
		return vector.Pt{X: float64(ox) + pt.X*ppm, Y: float64(oy) + pt.Y*ppm}
	}
	outline := color.RGBA{A: 255}
	for _, it := range p.Items {
		var pts [4]vector.Pt
		for i, c := range it.Corners {
			pts[i] = toImg(c)
		}
		fillPolygon(img, pts[:], toRGBA(it.Color))
		for i := range pts {
			strokeLine(img, pts[i], pts[(i+1)%len(pts)], outline)
		}
		if opt.Labels {
			drawLabel(img, it.Label, toImg(it.Center), toRGBA(labelColor(it.Color)))
		}
	}
	return img, nil
}

// ExportPNG writes the floor plan of d to path.
func ExportPNG(d domain.Design, path string, opt PNGOptions) error {
	img, err := RenderPNG(d, opt)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func toRGBA(c domain.RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func fillPolygon(img *image.RGBA, pts []vector.Pt, col color.RGBA) {
	b := img.Bounds()
	z := rast.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(img, b, image.NewUniform(col), image.Point{})
}

func strokeLine(img *image.RGBA, a, b vector.Pt, col color.RGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if steps == 0 {
		img.SetRGBA(int(math.Round(a.X)), int(math.Round(a.Y)), col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		img.SetRGBA(int(math.Round(a.X+(b.X-a.X)*t)), int(math.Round(a.Y+(b.Y-a.Y)*t)), col)
	}
}

func drawLabel(img *image.RGBA, text string, center vector.Pt, col color.RGBA) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Round()
	m := face.Metrics()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(int(math.Round(center.X))-w/2, int(math.Round(center.Y))+(m.Ascent.Round()-m.Descent.Round())/2),
	}
	d.DrawString(text)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
