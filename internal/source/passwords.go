// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package source

import "sync"

// passwords caches SFTP passwords per user@host for the life of the
// process, so repeated imports from one host prompt once. Values are byte
// slices so they can be zeroed.
var passwords = &passwordCache{values: map[string][]byte{}}

type passwordCache struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// Set stores a copy of pass under key, replacing any previous value.
func (p *passwordCache) Set(key string, pass []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wipe(key)
	if pass == nil {
		return
	}
	v := make([]byte, len(pass))
	copy(v, pass)
	p.values[key] = v
}

// Get returns a copy of the password cached under key, or nil.
func (p *passwordCache) Get(key string) []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	if !ok {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

// Clear zeroes and drops the password cached under key.
func (p *passwordCache) Clear(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wipe(key)
}

func (p *passwordCache) wipe(key string) {
	v := p.values[key]
	for i := range v {
		v[i] = 0
	}
	delete(p.values, key)
}

func (l SFTPLocation) cacheKey() string { return l.User + "@" + l.Addr }
