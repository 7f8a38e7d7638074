// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// Package prefs holds the integer preferences of the Misc, Status bar and
// QS screens: the privacy indicator switches and the data-usage cycle type.
package prefs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/settings"
)

// Toggle is an on/off preference stored as 1 or 0. Absent means on.
type Toggle struct {
	// Name is the CLI argument ("mic-camera", "location").
	Name    string
	Key     string
	TitleID string
}

var (
	MicCamera = Toggle{Name: "mic-camera", Key: settings.KeyMicCameraPrivacyIndicators, TitleID: "mic_camera_privacy_indicators_title"}
	Location  = Toggle{Name: "location", Key: settings.KeyLocationPrivacyIndicator, TitleID: "location_privacy_indicator_title"}
)

// Toggles lists the privacy indicator switches in display order.
var Toggles = []Toggle{MicCamera, Location}

// ToggleByName finds a toggle by its CLI name.
func ToggleByName(name string) (Toggle, error) {
	for _, t := range Toggles {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return Toggle{}, fmt.Errorf("unknown indicator %q (want mic-camera or location)", name)
}

// Enabled reads t with default 1.
func (t Toggle) Enabled(ctx context.Context, s settings.Store) (bool, error) {
	v, err := s.GetInt(ctx, t.Key, 1)
	if err != nil {
		return true, err
	}
	return v == 1, nil
}

// Set stores 1 for on and 0 for off.
func (t Toggle) Set(ctx context.Context, s settings.Store, on bool) error {
	v := 0
	if on {
		v = 1
	}
	return s.PutInt(ctx, t.Key, v)
}

// Data-usage cycle types.
const (
	CycleDaily  = 0
	CycleWeekly = 1
)

// Cycle reads qs_data_usage_cycle_type with default CycleDaily.
func Cycle(ctx context.Context, s settings.Store) (int, error) {
	return s.GetInt(ctx, settings.KeyDataUsageCycleType, CycleDaily)
}

// SetCycle stores the cycle type.
func SetCycle(ctx context.Context, s settings.Store, v int) error {
	return s.PutInt(ctx, settings.KeyDataUsageCycleType, v)
}

// ParseCycle accepts "daily", "weekly" or an integer.
func ParseCycle(arg string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "daily":
		return CycleDaily, nil
	case "weekly":
		return CycleWeekly, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid cycle type %q (want daily, weekly or a number)", arg)
	}
	return n, nil
}

// CycleSummaryID maps a cycle type to its summary message ID. Unknown
// values read as daily.
func CycleSummaryID(v int) string {
	if v == CycleWeekly {
		return "qs_footer_datausage_summary_weekly"
	}
	return "qs_footer_datausage_summary_daily"
}

// CycleLabel is the localized list entry of a cycle type.
func CycleLabel(v int) string {
	if v == CycleWeekly {
		return i18n.T("qs_cycle_weekly")
	}
	return i18n.T("qs_cycle_daily")
}

// CycleSummary returns the data-usage summary. A numeric pending value (one
// being edited but not yet stored) takes precedence over the stored value.
func CycleSummary(ctx context.Context, s settings.Store, pending string) (string, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(pending)); err == nil {
		return i18n.T(CycleSummaryID(n)), nil
	}
	v, err := Cycle(ctx, s)
	if err != nil {
		return i18n.T(CycleSummaryID(CycleDaily)), err
	}
	return i18n.T(CycleSummaryID(v)), nil
}
