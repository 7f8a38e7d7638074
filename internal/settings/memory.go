// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package settings

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// MemoryStore is an in-process Store. It also records audit actions.
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string]string
	actions []string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) GetString(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *MemoryStore) PutString(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
	return nil
}

func (m *MemoryStore) GetInt(ctx context.Context, name string, def int) (int, error) {
	v, ok, err := m.GetString(ctx, name)
	if err != nil {
		return def, err
	}
	return IntValue(v, ok, def), nil
}

func (m *MemoryStore) PutInt(ctx context.Context, name string, v int) error {
	return m.PutString(ctx, name, strconv.Itoa(v))
}

// LogAction records "ACTION: details".
func (m *MemoryStore) LogAction(_ context.Context, action, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action+": "+details)
	return nil
}

// Actions returns a copy of the recorded audit actions.
func (m *MemoryStore) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.actions...)
}

// Names returns the stored setting names in sorted order.
func (m *MemoryStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.values))
	for k := range m.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
