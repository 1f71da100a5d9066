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
	"math"

	"github.com/jung-kurt/gofpdf"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
	"roomplanner/internal/vector"
)

// PDFOptions controls PDF export. Units are millimeters on an A4 landscape page.
type PDFOptions struct {
	Title      string // defaults to the design name
	Dimensions bool   // print room size under the title
	Labels     bool
	Grid       bool // one-meter grid over the floor
	Mapper     coords.Mapper
}

const (
	pdfMargin    = 15.0
	pdfHeaderH   = 18.0
	pdfFontLabel = 8.0
)

// ExportPDF writes a single-page floor plan of d to path.
func ExportPDF(d domain.Design, path string, opt PDFOptions) error {
	p, err := buildPlan(d, opt.Mapper)
	if err != nil {
		return err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	title := opt.Title
	if title == "" {
		title = d.Name
	}
	if title == "" {
		title = "Room plan"
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor(d.Owner, true)
	pdf.SetCreator("roomplanner", false)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(pdfMargin, pdfMargin, title)
	if opt.Dimensions {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(pdfMargin, pdfMargin+7, dimensionsText(p.Room))
	}

	// fit the room into the area under the header, preserving aspect
	availW := pageW - 2*pdfMargin
	availH := pageH - 2*pdfMargin - pdfHeaderH
	scale := math.Min(availW/p.Room.Width, availH/p.Room.Length)
	ox := pdfMargin + (availW-p.Room.Width*scale)/2
	oy := pdfMargin + pdfHeaderH + (availH-p.Room.Length*scale)/2
	toPage := func(pt vector.Pt) gofpdf.PointType {
		return gofpdf.PointType{X: ox + pt.X*scale, Y: oy + pt.Y*scale}
	}

	setFillColor(pdf, p.Room.FloorColor)
	setDrawColor(pdf, domain.DarkGray)
	pdf.SetLineWidth(0.8)
	pdf.Rect(ox, oy, p.Room.Width*scale, p.Room.Length*scale, "FD")

	if opt.Grid {
		pdf.SetLineWidth(0.1)
		setDrawColor(pdf, domain.LightGray)
		for x := 1.0; x < p.Room.Width; x++ {
			pdf.Line(ox+x*scale, oy, ox+x*scale, oy+p.Room.Length*scale)
		}
		for y := 1.0; y < p.Room.Length; y++ {
			pdf.Line(ox, oy+y*scale, ox+p.Room.Width*scale, oy+y*scale)
		}
	}

	pdf.SetLineWidth(0.3)
	setDrawColor(pdf, domain.RGB{})
	pdf.SetFont("Helvetica", "", pdfFontLabel)
	for _, it := range p.Items {
		pts := make([]gofpdf.PointType, 0, len(it.Corners))
		for _, c := range it.Corners {
			pts = append(pts, toPage(c))
		}
		setFillColor(pdf, it.Color)
		pdf.Polygon(pts, "FD")
		if opt.Labels {
			lc := labelColor(it.Color)
			pdf.SetTextColor(int(lc.R), int(lc.G), int(lc.B))
			c := toPage(it.Center)
			pdf.Text(c.X-pdf.GetStringWidth(it.Label)/2, c.Y+pdfFontLabel*0.35/2, it.Label)
		}
	}
	pdf.SetTextColor(0, 0, 0)

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c domain.RGB) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c domain.RGB) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
