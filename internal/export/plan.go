/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders a design as a top-down floor plan in PNG, SVG and PDF.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
	"roomplanner/internal/vector"
)

// footprint is a placement outline in room meters, origin at the top-left wall corner.
type footprint struct {
	ID      int
	Label   string
	Color   domain.RGB
	Corners [4]vector.Pt
	Center  vector.Pt
}

// plan is the projection shared by every exporter.
type plan struct {
	Room  domain.Room
	Items []footprint
}

func buildPlan(d domain.Design, m coords.Mapper) (plan, error) {
	if err := d.Room.Validate(); err != nil {
		return plan{}, fmt.Errorf("export: %w", err)
	}
	if m.Scale <= 0 {
		m = coords.Default()
	}
	toMeters := vector.Scale(1/m.Scale, 1/m.Scale)
	p := plan{Room: d.Room, Items: make([]footprint, 0, len(d.Furniture))}
	for _, f := range d.Furniture {
		rot := coords.RotationToTransform(f.Rotation).About(m.ItemCenter(f))
		corners := toMeters.Mul(rot).ApplyRect(m.ItemRect(f))
		p.Items = append(p.Items, footprint{
			ID:      f.ID,
			Label:   f.Label(),
			Color:   f.Color,
			Corners: corners,
			Center:  toMeters.Apply(m.ItemCenter(f)),
		})
	}
	return p, nil
}

func ensureDir(path string) error {
	if path == "" {
		return errors.New("export: empty output path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}

// labelColor picks black or white for legibility on c.
func labelColor(c domain.RGB) domain.RGB {
	lum := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if lum < 128 {
		return domain.White
	}
	return domain.RGB{}
}

func dimensionsText(r domain.Room) string {
	return fmt.Sprintf("%.2f m x %.2f m x %.2f m, %.2f sq m", r.Width, r.Length, r.Height, r.Area())
}
