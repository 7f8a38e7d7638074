// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// Package payload parses, summarizes and validates the two attestation
// payload kinds: keybox XML documents and PIF JSON objects.
package payload

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Kind identifies a payload family.
type Kind int

const (
	Keybox Kind = iota
	Pif
)

// Kinds lists every payload kind in display order.
var Kinds = []Kind{Keybox, Pif}

// String returns the lower-case command name of the kind.
func (k Kind) String() string {
	switch k {
	case Keybox:
		return "keybox"
	case Pif:
		return "pif"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MIMEType is the declared document type a picker is constrained to.
func (k Kind) MIMEType() string {
	if k == Pif {
		return "application/json"
	}
	return "text/xml"
}

// Extension is the file-name extension accepted for the kind, with the dot.
func (k Kind) Extension() string {
	if k == Pif {
		return ".json"
	}
	return ".xml"
}

// DataKey is the settings key holding the raw payload text.
func (k Kind) DataKey() string {
	if k == Pif {
		return "pif_data"
	}
	return "keybox_data"
}

// TimestampKey is the settings key holding the display timestamp.
func (k Kind) TimestampKey() string {
	return k.DataKey() + "_timestamp"
}

// MessagePrefix is the i18n message-ID prefix for the kind ("keybox_data").
func (k Kind) MessagePrefix() string {
	return k.DataKey()
}

// ParseKind maps a command name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keybox":
		return Keybox, nil
	case "pif":
		return Pif, nil
	default:
		return 0, fmt.Errorf("unknown payload kind %q", s)
	}
}

// Accepts reports whether a document named name with the given declared MIME
// type may be imported as k. Either a matching extension (case-insensitive)
// or a matching media type is enough; parameters such as charset are ignored.
func (k Kind) Accepts(name, declaredType string) bool {
	if strings.EqualFold(filepath.Ext(name), k.Extension()) {
		return true
	}
	if declaredType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(declaredType)
	if err != nil {
		return false
	}
	return mt == k.MIMEType()
}
