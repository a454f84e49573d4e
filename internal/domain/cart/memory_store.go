// internal/domain/cart/memory_store.go
package cart

import (
	"context"
	"sync"
)

// MemorySessionStore keeps session values in process memory. It backs tests
// and single-instance development runs.
type MemorySessionStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemorySessionStore creates an empty store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{values: make(map[string][]byte)}
}

// Get returns a copy of the stored value
func (m *MemorySessionStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores a copy of value
func (m *MemorySessionStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	return nil
}
