package cloud

import (
	"context"
	"sync"

	"mousecolony/pkg/colony"
)

// Memory implements Store backed by process memory. Intended for tests. It
// auto-seeds an empty default document on the first load for an owner, the
// behavior of deployments where the adapter owns first-use initialization.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]colony.Document
}

// NewMemory returns an in-memory document store.
func NewMemory() *Memory {
	return &Memory{docs: map[string]colony.Document{}}
}

// Driver returns the driver identifier.
func (m *Memory) Driver() Driver { return DriverMemory }

// Save upserts the owner's document.
func (m *Memory) Save(_ context.Context, owner string, doc colony.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[owner] = colony.CloneDocument(doc)
	return nil
}

// Load returns the owner's document, seeding an empty one on first use.
func (m *Memory) Load(_ context.Context, owner string) (colony.Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[owner]
	if !ok {
		doc = colony.EmptyDocument()
		m.docs[owner] = doc
	}
	return colony.CloneDocument(doc), true, nil
}

// Delete removes the owner's document, reporting whether it existed.
func (m *Memory) Delete(_ context.Context, owner string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[owner]
	delete(m.docs, owner)
	return ok, nil
}
