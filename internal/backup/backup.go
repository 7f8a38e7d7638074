// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup exports the known secure settings into a zstd-compressed
// JSON document and restores them, re-validating payloads on the way back.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/derpfest/customizations/internal/logging"
	"github.com/derpfest/customizations/internal/payload"
	"github.com/derpfest/customizations/internal/settings"
)

// FormatVersion is written into every backup.
const FormatVersion = 1

// Entry is one stored setting.
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Data is the backup document.
type Data struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Settings  []Entry   `json:"settings"`
}

// Keys lists every setting a backup carries, in export order.
func Keys() []string {
	var keys []string
	for _, k := range payload.Kinds {
		keys = append(keys, k.DataKey(), k.TimestampKey())
	}
	return append(keys,
		settings.KeyMicCameraPrivacyIndicators,
		settings.KeyLocationPrivacyIndicator,
		settings.KeyDataUsageCycleType,
	)
}

// DefaultFileName is used when no output file is given.
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("customizations-backup-%s.json.zst", now.Format("2006-01-02"))
}

// Export collects every present known setting from s.
func Export(ctx context.Context, s settings.Store, now time.Time) (*Data, error) {
	d := &Data{Version: FormatVersion, CreatedAt: now.UTC(), Settings: []Entry{}}
	for _, name := range Keys() {
		v, ok, err := s.GetString(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if ok {
			d.Settings = append(d.Settings, Entry{Name: name, Value: v})
		}
	}
	return d, nil
}

// Write streams d as indented JSON through a zstd encoder.
func Write(w io.Writer, d *Data) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}
	return zw.Close()
}

// Read decodes a document produced by Write.
func Read(r io.Reader) (*Data, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var d Data
	if err := json.NewDecoder(zr).Decode(&d); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	if d.Version < 1 || d.Version > FormatVersion {
		return nil, fmt.Errorf("unsupported backup version %d", d.Version)
	}
	return &d, nil
}

// WriteFile writes d to filename, appending ".zst" when missing.
func WriteFile(filename string, d *Data) (string, error) {
	if !strings.HasSuffix(filename, ".zst") {
		filename += ".zst"
	}
	f, err := os.Create(filename)
	if err != nil {
		return filename, fmt.Errorf("could not create file: %w", err)
	}
	if err := Write(f, d); err != nil {
		_ = f.Close()
		return filename, err
	}
	return filename, f.Close()
}

// ReadFile reads a backup file.
func ReadFile(filename string) (*Data, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// RestoreResult reports what Restore wrote.
type RestoreResult struct {
	Restored int
	// Skipped lists kinds whose payload was invalid.
	Skipped []payload.Kind
	// Payloads lists kinds whose payload was written.
	Payloads []payload.Kind
}

// Restore writes the entries of d into s. Payloads failing validation are
// skipped together with their timestamp; unknown names are ignored.
func Restore(ctx context.Context, s settings.Store, d *Data, policy payload.Policy) (RestoreResult, error) {
	var res RestoreResult
	known := map[string]bool{}
	for _, k := range Keys() {
		known[k] = true
	}
	values := map[string]string{}
	for _, e := range d.Settings {
		if !known[e.Name] {
			logging.Warnf("backup: ignoring unknown setting %s", e.Name)
			continue
		}
		values[e.Name] = e.Value
	}

	skip := map[string]bool{}
	for _, k := range payload.Kinds {
		raw, ok := values[k.DataKey()]
		if !ok {
			continue
		}
		if !payload.Validate(k, raw, policy) {
			logging.Warnf("backup: skipping invalid %s payload", k)
			skip[k.DataKey()] = true
			skip[k.TimestampKey()] = true
			res.Skipped = append(res.Skipped, k)
			continue
		}
		res.Payloads = append(res.Payloads, k)
	}

	for _, name := range Keys() {
		v, ok := values[name]
		if !ok || skip[name] {
			continue
		}
		if err := s.PutString(ctx, name, v); err != nil {
			return res, fmt.Errorf("write %s: %w", name, err)
		}
		res.Restored++
	}
	return res, nil
}
