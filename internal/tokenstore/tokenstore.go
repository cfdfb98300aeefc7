// Package tokenstore remembers revoked token ids until they expire.
package tokenstore

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local revocation list.
type Memory struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{revoked: make(map[string]time.Time), now: time.Now}
}

func (m *Memory) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, id)
		}
	}
	if until.After(now) {
		m.revoked[jti] = until
	}
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.revoked[jti]
	return ok && exp.After(m.now()), nil
}

func (m *Memory) Ping(context.Context) error { return nil }
