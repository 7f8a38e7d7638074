// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnavailable is returned when the database connection is gone.
	ErrUnavailable = errors.New("database unavailable")
)

// MapDBError maps common driver errors to the package sentinels using the
// error text, so the drivers stay out of this file.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	switch {
	case strings.Contains(le, "duplicate") || strings.Contains(le, "unique") ||
		strings.Contains(le, "23505") || strings.Contains(le, "1062"):
		return ErrDuplicate
	case strings.Contains(le, "database is closed") || strings.Contains(le, "connection refused") ||
		strings.Contains(le, "bad connection"):
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
