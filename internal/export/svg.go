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
	"fmt"
	"os"
	"strings"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
)

// SVGOptions controls SVG export. The viewBox is in centimeters.
type SVGOptions struct {
	Labels bool
	Mapper coords.Mapper
}

// RenderSVG returns the floor plan of d as an SVG document.
func RenderSVG(d domain.Design, opt SVGOptions) ([]byte, error) {
	p, err := buildPlan(d, opt.Mapper)
	if err != nil {
		return nil, err
	}
	const cm = 100.0
	const margin = 10.0
	w, h := p.Room.Width*cm, p.Room.Length*cm

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"%g %g %g %g\">\n",
		w+2*margin, h+2*margin, -margin, -margin, w+2*margin, h+2*margin)
	if d.Name != "" {
		wf("  <title>%s</title>\n", escText(d.Name))
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"3\"/>\n",
		w, h, p.Room.FloorColor.String(), domain.DarkGray.String())
	for _, it := range p.Items {
		pts := make([]string, 0, len(it.Corners))
		for _, c := range it.Corners {
			pts = append(pts, fmt.Sprintf("%g,%g", c.X*cm, c.Y*cm))
		}
		wf("  <polygon data-id=\"%d\" points=\"%s\" fill=\"%s\" stroke=\"#000\" stroke-width=\"1\"/>\n",
			it.ID, strings.Join(pts, " "), it.Color.String())
		if opt.Labels {
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"10\" text-anchor=\"middle\" dominant-baseline=\"middle\" fill=\"%s\">%s</text>\n",
				it.Center.X*cm, it.Center.Y*cm, labelColor(it.Color).String(), escText(it.Label))
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return nil, fmt.Errorf("build svg: %w", werr)
	}
	return buf.Bytes(), nil
}

// ExportSVG writes the floor plan of d to path.
func ExportSVG(d domain.Design, path string, opt SVGOptions) error {
	b, err := RenderSVG(d, opt)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
