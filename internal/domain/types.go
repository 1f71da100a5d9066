/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package domain defines the room planner data model: rooms, furniture
// placements and the design record exchanged with persistence.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Shape is the footprint tag of a room.
type Shape int

const (
	ShapeRectangle Shape = iota
	ShapeSquare
	ShapeLShaped
)

var shapeNames = [...]string{"RECTANGLE", "SQUARE", "L_SHAPED"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape accepts the upper-case wire names case-insensitively.
func ParseShape(s string) (Shape, error) {
	n := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown room shape %q", s)
}

func (s Shape) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *Shape) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	v, err := ParseShape(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// FurnitureType tags what a placement is.
type FurnitureType int

const (
	Chair FurnitureType = iota
	Sofa
	Table
	Bed
	Cabinet
	Bookshelf
)

var furnitureTypeNames = [...]string{"CHAIR", "SOFA", "TABLE", "BED", "CABINET", "BOOKSHELF"}

// FurnitureTypes lists every type in declaration order.
func FurnitureTypes() []FurnitureType {
	return []FurnitureType{Chair, Sofa, Table, Bed, Cabinet, Bookshelf}
}

func (t FurnitureType) String() string {
	if t < 0 || int(t) >= len(furnitureTypeNames) {
		return fmt.Sprintf("FurnitureType(%d)", int(t))
	}
	return furnitureTypeNames[t]
}

// ParseFurnitureType accepts the upper-case wire names case-insensitively.
func ParseFurnitureType(s string) (FurnitureType, error) {
	n := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range furnitureTypeNames {
		if n == name {
			return FurnitureType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown furniture type %q", s)
}

func (t FurnitureType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *FurnitureType) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	v, err := ParseFurnitureType(str)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// RGB is an opaque 8-bit color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c RGB) String() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Point is an editor position in pixels.
type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Room dimensions are meters.
type Room struct {
	Width      float64 `json:"width"`
	Length     float64 `json:"length"`
	Height     float64 `json:"height"`
	Shape      Shape   `json:"shape"`
	FloorColor RGB     `json:"floorColor"`
	WallColor  RGB     `json:"wallColor"`
}

// Area returns the floor area in square meters.
func (r Room) Area() float64 { return r.Width * r.Length }

// Furniture is one placement within a design. It holds no references, so
// plain assignment yields an independent copy.
type Furniture struct {
	ID       int           `json:"id"`
	Type     FurnitureType `json:"type"`
	Width    float64       `json:"width"`
	Length   float64       `json:"length"`
	Height   float64       `json:"height"`
	Color    RGB           `json:"color"`
	Position Point         `json:"position"`
	Rotation float64       `json:"rotationDegrees"`
}

// Scaled returns a copy with every dimension multiplied by factor.
func (f Furniture) Scaled(factor float64) Furniture {
	f.Width *= factor
	f.Length *= factor
	f.Height *= factor
	return f
}

// Label is the short caption drawn on plans.
func (f Furniture) Label() string {
	switch f.Type {
	case Chair:
		return "Chair"
	case Sofa:
		return "Sofa"
	case Table:
		return "Table"
	case Bed:
		return "Bed"
	case Cabinet:
		return "Cabinet"
	case Bookshelf:
		return "Shelf"
	}
	return f.Type.String()
}

// Design is the record exchanged with persistence collaborators.
type Design struct {
	ID        int         `json:"id"`
	StableID  string      `json:"stableId,omitempty"`
	Name      string      `json:"name"`
	Owner     string      `json:"ownerIdentifier"`
	Room      Room        `json:"room"`
	Furniture []Furniture `json:"furniture"`
	CreatedAt time.Time   `json:"createdAt,omitzero"`
	UpdatedAt time.Time   `json:"updatedAt,omitzero"`
}

// Clone returns a copy that shares no backing storage with d.
func (d Design) Clone() Design {
	c := d
	c.Furniture = make([]Furniture, len(d.Furniture))
	copy(c.Furniture, d.Furniture)
	return c
}
