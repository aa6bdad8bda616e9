package session

import (
	"context"
	"sync"
)

// MemoryCredentials is an in-process credential store for tests and
// ephemeral runs.
type MemoryCredentials struct {
	mu     sync.RWMutex
	hashes map[string][]byte
}

// NewMemoryCredentials returns an empty in-memory credential store.
func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{hashes: map[string][]byte{}}
}

func (m *MemoryCredentials) Put(_ context.Context, owner string, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(hash))
	copy(cp, hash)
	m.hashes[owner] = cp
	return nil
}

func (m *MemoryCredentials) Get(_ context.Context, owner string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hash, ok := m.hashes[owner]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(hash))
	copy(cp, hash)
	return cp, true, nil
}
