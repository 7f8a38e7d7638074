// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// Package settings defines the secure-settings key/value contract shared by
// the SQL and on-device backends.
package settings

import (
	"context"
	"strconv"
	"strings"
)

// Well-known setting names.
const (
	KeyMicCameraPrivacyIndicators = "mic_camera_privacy_indicators_enabled"
	KeyLocationPrivacyIndicator   = "location_privacy_indicator_enabled"
	KeyDataUsageCycleType         = "qs_data_usage_cycle_type"
)

// Store reads and writes single secure settings. Each call is atomic on its
// own; callers needing several writes issue them one after the other.
type Store interface {
	// GetString returns the stored value and whether it exists.
	GetString(ctx context.Context, name string) (string, bool, error)
	PutString(ctx context.Context, name, value string) error
	// Delete removes name. Deleting a missing setting is not an error.
	Delete(ctx context.Context, name string) error
	// GetInt returns def when name is absent or not an integer.
	GetInt(ctx context.Context, name string, def int) (int, error)
	PutInt(ctx context.Context, name string, v int) error
}

// Auditor is implemented by stores that keep an audit trail.
type Auditor interface {
	LogAction(ctx context.Context, action, details string) error
}

// IntValue converts a raw stored value the way GetInt does.
func IntValue(raw string, ok bool, def int) int {
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}
