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
	"strings"

	"roomplanner/internal/domain"
)

var namedColors = []struct {
	name string
	rgb  domain.RGB
}{
	{"Dark gray", domain.DarkGray},
	{"Light gray", domain.LightGray},
	{"White", domain.White},
	{"Oak", domain.RGB{R: 209, G: 190, B: 168}},
	{"Walnut", domain.RGB{R: 101, G: 67, B: 33}},
	{"Navy", domain.RGB{R: 31, G: 58, B: 102}},
	{"Olive", domain.RGB{R: 107, G: 120, B: 56}},
	{"Brick", domain.RGB{R: 168, G: 60, B: 50}},
}

func paletteNames() []string {
	out := make([]string, len(namedColors))
	for i, c := range namedColors {
		out[i] = c.name
	}
	return out
}

func paletteColor(name string) (domain.RGB, bool) {
	for _, c := range namedColors {
		if strings.EqualFold(c.name, name) {
			return c.rgb, true
		}
	}
	return domain.RGB{}, false
}
