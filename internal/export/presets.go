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
	"path/filepath"
	"strings"

	"roomplanner/internal/coords"
	"roomplanner/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls exporting one design to several formats.
//
// Files are named design-<id>.<ext> inside OutDir/<format>/. An empty OutDir
// uses the preset name.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: pdf, png, svg; empty means preset defaults
	Labels  *bool    // when set, overrides the preset default
	OutDir  string
	Mapper  coords.Mapper
}

// BatchExport runs exports according to the given preset and returns the written paths.
func BatchExport(d domain.Design, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if baseOut == "" {
		baseOut = "."
	}
	labels := presetLabels(opt.Preset)
	if opt.Labels != nil {
		labels = *opt.Labels
	}

	var written []string
	for _, raw := range formats {
		f := strings.ToLower(strings.TrimSpace(raw))
		out := filepath.Join(baseOut, f, fmt.Sprintf("design-%d.%s", d.ID, f))
		var err error
		switch f {
		case "pdf":
			err = ExportPDF(d, out, PDFOptions{Dimensions: true, Labels: labels, Grid: opt.Preset == PresetPrint, Mapper: opt.Mapper})
		case "png":
			err = ExportPNG(d, out, PNGOptions{PixelsPerMeter: presetPixelsPerMeter(opt.Preset), Labels: labels, Mapper: opt.Mapper})
		case "svg":
			err = ExportSVG(d, out, SVGOptions{Labels: labels, Mapper: opt.Mapper})
		default:
			return written, fmt.Errorf("unknown format: %s", raw)
		}
		if err != nil {
			return written, fmt.Errorf("%s design %d: %w", f, d.ID, err)
		}
		written = append(written, out)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetLabels(p PresetName) bool {
	return p != PresetWeb
}

func presetPixelsPerMeter(p PresetName) float64 {
	if p == PresetPrint {
		return 200
	}
	return 100
}
