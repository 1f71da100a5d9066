/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

// Stock colors shared by the editor and exporters.
var (
	LightGray = RGB{R: 192, G: 192, B: 192}
	DarkGray  = RGB{R: 64, G: 64, B: 64}
	White     = RGB{R: 255, G: 255, B: 255}
)

// FloorPalette is offered when creating a room.
var FloorPalette = []RGB{
	{R: 209, G: 190, B: 168}, // light wood
	{R: 101, G: 67, B: 33},   // dark wood
	{R: 169, G: 169, B: 169},
	{R: 210, G: 180, B: 140},
	{R: 245, G: 245, B: 220},
	{R: 255, G: 0, B: 0},
}

// WallPalette is offered when creating a room.
var WallPalette = []RGB{
	White,
	{R: 245, G: 245, B: 220},
	{R: 230, G: 230, B: 250},
	{R: 173, G: 216, B: 230},
	{R: 144, G: 238, B: 144},
	{R: 255, G: 182, B: 193},
}

// DefaultRoom is a 4x5x3 m rectangle with a light gray floor and white walls.
func DefaultRoom() Room {
	return Room{Width: 4, Length: 5, Height: 3, Shape: ShapeRectangle, FloorColor: LightGray, WallColor: White}
}

type dims struct{ w, l, h float64 }

var stockDims = map[FurnitureType]dims{
	Chair:     {0.5, 0.5, 0.9},
	Sofa:      {2.0, 0.9, 0.9},
	Table:     {1.2, 0.8, 0.75},
	Bed:       {2.0, 1.6, 0.5},
	Cabinet:   {0.6, 0.4, 1.8},
	Bookshelf: {0.8, 0.3, 1.8},
}

// Template returns the stock placement for t with id 0 at the origin.
func Template(t FurnitureType) Furniture {
	d, ok := stockDims[t]
	if !ok {
		d = stockDims[Chair]
	}
	return Furniture{Type: t, Width: d.w, Length: d.l, Height: d.h, Color: DarkGray}
}

// Catalog returns one template per furniture type.
func Catalog() []Furniture {
	types := FurnitureTypes()
	out := make([]Furniture, 0, len(types))
	for _, t := range types {
		out = append(out, Template(t))
	}
	return out
}
