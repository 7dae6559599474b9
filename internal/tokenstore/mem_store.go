package tokenstore

import (
	"context"
	"sync"
	"time"
)

// MemStore holds a single expiry in memory.
type MemStore struct {
	mu     sync.RWMutex
	expiry time.Time
	set    bool
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) GetPersistedExpiry(_ context.Context) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.expiry, m.set
}

func (m *MemStore) SetPersistedExpiry(_ context.Context, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expiry = expiry
	m.set = true
	return nil
}

func (m *MemStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expiry = time.Time{}
	m.set = false
	return nil
}
