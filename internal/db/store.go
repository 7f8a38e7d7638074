// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/derpfest/customizations/internal/settings"
	"github.com/uptrace/bun"
)

// SecureSettingModel maps the secure_settings table.
type SecureSettingModel struct {
	bun.BaseModel `bun:"table:secure_settings"`
	Name          string    `bun:"name,pk"`
	Value         string    `bun:"value"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// AuditLogModel maps the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Timestamp     time.Time `bun:"timestamp"`
	Username      string    `bun:"username"`
	Action        string    `bun:"action"`
	Details       string    `bun:"details"`
}

// Store is the bun implementation of settings.Store.
type Store struct {
	bun    *bun.DB
	dbType string
	now    func() time.Time
}

var (
	_ settings.Store   = (*Store)(nil)
	_ settings.Auditor = (*Store)(nil)
)

// BunDB exposes the underlying bun handle, mainly for tests.
func (s *Store) BunDB() *bun.DB { return s.bun }

// Type returns the engine name ("sqlite", "postgres" or "mysql").
func (s *Store) Type() string { return s.dbType }

// Close releases the connection pool.
func (s *Store) Close() error { return s.bun.Close() }

func (s *Store) GetString(ctx context.Context, name string) (string, bool, error) {
	var m SecureSettingModel
	err := s.bun.NewSelect().Model(&m).Where("name = ?", name).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, MapDBError(err)
	}
	return m.Value, true, nil
}

// PutString inserts or replaces name.
func (s *Store) PutString(ctx context.Context, name, value string) error {
	m := &SecureSettingModel{Name: name, Value: value, UpdatedAt: s.now().UTC()}
	q := s.bun.NewInsert().Model(m)
	if s.dbType == "mysql" {
		q = q.On("DUPLICATE KEY UPDATE").
			Set("value = VALUES(value)").
			Set("updated_at = VALUES(updated_at)")
	} else {
		q = q.On("CONFLICT (name) DO UPDATE").
			Set("value = EXCLUDED.value").
			Set("updated_at = EXCLUDED.updated_at")
	}
	_, err := q.Exec(ctx)
	return MapDBError(err)
}

func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.bun.NewDelete().Model((*SecureSettingModel)(nil)).Where("name = ?", name).Exec(ctx)
	return MapDBError(err)
}

func (s *Store) GetInt(ctx context.Context, name string, def int) (int, error) {
	v, ok, err := s.GetString(ctx, name)
	if err != nil {
		return def, err
	}
	return settings.IntValue(v, ok, def), nil
}

func (s *Store) PutInt(ctx context.Context, name string, v int) error {
	return s.PutString(ctx, name, strconv.Itoa(v))
}

// Names lists every stored setting name in ascending order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.bun.NewSelect().Model((*SecureSettingModel)(nil)).Column("name").OrderExpr("name ASC").Scan(ctx, &names)
	return names, MapDBError(err)
}

// currentUsername returns the OS user without any Windows domain prefix.
func currentUsername() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	if parts := strings.Split(u.Username, `\`); len(parts) > 1 {
		return parts[1]
	}
	return u.Username
}

// LogAction inserts an audit log entry attributed to the current OS user.
func (s *Store) LogAction(ctx context.Context, action, details string) error {
	m := &AuditLogModel{Timestamp: s.now().UTC(), Username: currentUsername(), Action: action, Details: details}
	_, err := s.bun.NewInsert().Model(m).Exec(ctx)
	return MapDBError(err)
}

// AuditEntries returns the most recent audit entries first. A limit <= 0
// returns every entry.
func (s *Store) AuditEntries(ctx context.Context, limit int) ([]AuditLogModel, error) {
	var out []AuditLogModel
	q := s.bun.NewSelect().Model(&out).OrderExpr("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	return out, nil
}

// SchemaVersions returns the applied migration versions in order.
func (s *Store) SchemaVersions(ctx context.Context) ([]string, error) {
	var versions []string
	if err := QueryRawInto(ctx, s.bun, &versions, "SELECT version FROM schema_migrations ORDER BY version"); err != nil {
		return nil, MapDBError(err)
	}
	return versions, nil
}
