package record

import (
	"context"
	"sync"
)

// MemoryStore keeps the deploy record in memory. Used when no record URI is
// configured and in tests.
type MemoryStore struct {
	mu sync.RWMutex
	r  Record
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored record, zero when nothing was saved.
func (m *MemoryStore) Load(_ context.Context) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.r, nil
}

// Save replaces the stored record.
func (m *MemoryStore) Save(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.r = r
	return nil
}
