// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package importer

import (
	"context"

	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/logging"
	"github.com/derpfest/customizations/internal/payload"
)

// Summary is the display state of one stored payload.
type Summary struct {
	Kind   payload.Kind `json:"-"`
	Loaded bool         `json:"loaded"`
	// TypeLabel and CertCount are set for keyboxes.
	TypeLabel string `json:"type,omitempty"`
	CertCount int    `json:"certificates,omitempty"`
	// PropertyCount is set for PIF payloads.
	PropertyCount int    `json:"properties,omitempty"`
	Timestamp     string `json:"loaded_at,omitempty"`
	// Text is the localized summary line.
	Text string `json:"summary"`
	// Raw is the stored payload text.
	Raw string `json:"-"`
}

// Summary reads the stored payload of kind and builds its summary. A payload
// that no longer parses is summarized with default values.
func (c *Controller) Summary(ctx context.Context, kind payload.Kind) (Summary, error) {
	raw, ok, err := c.store.GetString(ctx, kind.DataKey())
	if err != nil {
		return Summary{Kind: kind}, err
	}
	if !ok {
		return Summary{Kind: kind, Text: i18n.T(kind.MessagePrefix() + "_summary")}, nil
	}

	ts, tsOK, err := c.store.GetString(ctx, kind.TimestampKey())
	if err != nil {
		return Summary{Kind: kind}, err
	}
	if !tsOK {
		ts = c.clock.Now().Format(TimestampLayout)
	}

	s := Summary{Kind: kind, Loaded: true, Timestamp: ts, Raw: raw}
	switch kind {
	case payload.Pif:
		p, err := payload.ParsePif(raw)
		if err != nil {
			logging.ErrorErr("Failed to parse PIF info", err)
		}
		s.PropertyCount = p.PropertyCount
		s.Text = i18n.T("pif_data_summary_loaded", s.PropertyCount, ts)
	default:
		k, err := payload.ParseKeybox(raw)
		if err != nil {
			logging.ErrorErr("Failed to parse keybox info", err)
		}
		s.TypeLabel = k.TypeLabel()
		s.CertCount = k.DisplayCertCount()
		s.Text = i18n.T("keybox_data_summary_loaded", s.TypeLabel, s.CertCount, ts)
	}
	return s, nil
}
