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

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumsRoundTripThroughJSONNames(t *testing.T) {
	b, err := json.Marshal(Furniture{Type: Bookshelf, Width: 1, Length: 1, Height: 1})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type":"BOOKSHELF"`)

	var f Furniture
	require.NoError(t, json.Unmarshal([]byte(`{"type":"sofa"}`), &f))
	assert.Equal(t, Sofa, f.Type)

	var r Room
	require.NoError(t, json.Unmarshal([]byte(`{"shape":"L_SHAPED"}`), &r))
	assert.Equal(t, ShapeLShaped, r.Shape)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"LAMP"}`), &f))
}

func TestNewRoomRejectsNonPositiveDimensions(t *testing.T) {
	_, err := NewRoom(4, 0, 3, ShapeRectangle, LightGray, White)
	require.ErrorIs(t, err, ErrInvalidGeometry)

	r, err := NewRoom(4, 5, 3, ShapeSquare, LightGray, White)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, r.Area(), 1e-9)
}

func TestNewFurnitureRejectsBadDimensions(t *testing.T) {
	_, err := NewFurniture(Chair, -1, 0.5, 0.9, DarkGray)
	require.ErrorIs(t, err, ErrInvalidGeometry)
	_, err = NewFurniture(FurnitureType(42), 1, 1, 1, DarkGray)
	require.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestDesignValidateFindsDuplicateIDs(t *testing.T) {
	d := Design{Room: DefaultRoom(), Furniture: []Furniture{Template(Chair), Template(Table)}}
	d.Furniture[0].ID, d.Furniture[1].ID = 1, 1
	require.ErrorIs(t, d.Validate(), ErrInvalidGeometry)
	d.Furniture[1].ID = 2
	require.NoError(t, d.Validate())
}

func TestCatalogHasOneTemplatePerType(t *testing.T) {
	cat := Catalog()
	require.Len(t, cat, len(FurnitureTypes()))
	chair := Template(Chair)
	assert.Equal(t, 0.5, chair.Width)
	assert.Equal(t, 0.5, chair.Length)
	assert.Equal(t, DarkGray, chair.Color)
	for _, f := range cat {
		assert.NoError(t, f.Validate(), f.Type.String())
	}
}

func TestCloneDoesNotShareFurniture(t *testing.T) {
	d := Design{Room: DefaultRoom(), Furniture: []Furniture{Template(Sofa)}}
	c := d.Clone()
	c.Furniture[0].Rotation = 90
	assert.Zero(t, d.Furniture[0].Rotation)
}

func TestScaledAndLabel(t *testing.T) {
	f := Template(Table).Scaled(2)
	assert.InDelta(t, 2.4, f.Width, 1e-9)
	assert.Equal(t, "Table", f.Label())
	assert.Equal(t, "Shelf", Template(Bookshelf).Label())
}
