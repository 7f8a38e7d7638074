// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/xeipuuv/gojsonschema"
)

// pifSchema is the structural contract of a PIF document.
const pifSchema = `{"type":"object","minProperties":1}`

var pifSchemaLoader = gojsonschema.NewStringLoader(pifSchema)

// PifSummary is the transient view of a PIF document.
type PifSummary struct {
	PropertyCount int `json:"property_count"`
}

// ParsePif decodes doc as a single JSON object and counts its top-level
// keys. Nested values are not inspected.
func ParsePif(doc string) (PifSummary, error) {
	obj, err := decodeObject([]byte(doc))
	if err != nil {
		return PifSummary{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return PifSummary{PropertyCount: len(obj)}, nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("document is not a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON object")
	}
	return obj, nil
}

// ValidatePif reports whether doc is a JSON object with at least one
// property. Parse failures count as invalid.
func ValidatePif(doc string) bool {
	return ValidatePifReport(doc).OK()
}

// ValidatePifReport parses doc and evaluates it against the PIF schema.
func ValidatePifReport(doc string) Report {
	s, err := ParsePif(doc)
	if err != nil {
		return Report{Checks: []Check{{ID: "check_parse"}}}
	}
	res, err := gojsonschema.Validate(pifSchemaLoader, gojsonschema.NewStringLoader(doc))
	passed := err == nil && res.Valid()
	return Report{Checks: []Check{
		{ID: "check_parse", Passed: true},
		{ID: "check_pif_properties", Passed: passed, Value: s.PropertyCount},
	}}
}
