/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"os"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

func TestSavedDocumentConformsToSchema(t *testing.T) {
	lib := openTestLibrary(t, t.TempDir())
	d := sampleDesign("alice")
	if err := lib.Save(context.Background(), &d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(lib.DesignPath(d.ID))
	if err != nil {
		t.Fatalf("read design: %v", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(DesignSchema())
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	if !result.Valid() {
		for _, e := range result.Errors() {
			t.Logf("schema error: %s", e)
		}
		t.Fatalf("design does not conform to schema")
	}
}

func TestValidateDesignJSONRejects(t *testing.T) {
	cases := map[string]string{
		"not json":       "{",
		"missing room":   `{"id":1,"name":"x","ownerIdentifier":"a","furniture":[]}`,
		"zero width":     `{"id":1,"name":"x","ownerIdentifier":"a","furniture":[],"room":{"width":0,"length":1,"height":1,"shape":"SQUARE","floorColor":{"r":0,"g":0,"b":0},"wallColor":{"r":0,"g":0,"b":0}}}`,
		"unknown type":   `{"id":1,"name":"x","ownerIdentifier":"a","room":{"width":1,"length":1,"height":1,"shape":"SQUARE","floorColor":{"r":0,"g":0,"b":0},"wallColor":{"r":0,"g":0,"b":0}},"furniture":[{"id":1,"type":"LAMP","width":1,"length":1,"height":1,"color":{"r":0,"g":0,"b":0},"position":{"x":0,"y":0},"rotationDegrees":0}]}`,
		"color overflow": `{"id":1,"name":"x","ownerIdentifier":"a","furniture":null,"room":{"width":1,"length":1,"height":1,"shape":"SQUARE","floorColor":{"r":300,"g":0,"b":0},"wallColor":{"r":0,"g":0,"b":0}}}`,
	}
	for name, doc := range cases {
		if err := ValidateDesignJSON([]byte(doc)); !errors.Is(err, ErrSchema) {
			t.Errorf("%s: expected ErrSchema, got %v", name, err)
		}
	}
}

func TestDecodeDesignAcceptsMinimal(t *testing.T) {
	doc := `{"id":3,"name":"x","ownerIdentifier":"a","furniture":null,"room":{"width":2,"length":3,"height":2.5,"shape":"L_SHAPED","floorColor":{"r":1,"g":2,"b":3},"wallColor":{"r":4,"g":5,"b":6}}}`
	d, err := DecodeDesign([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeDesign: %v", err)
	}
	if d.ID != 3 || d.Room.Length != 3 {
		t.Fatalf("decoded %+v", d)
	}
}
