// Package session manages owner identity for the colony service:
// credential registration, login, and the logout teardown that clears
// locally persisted state.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"mousecolony/internal/core"
)

// ErrNoSession indicates an operation requiring a logged-in identity ran
// without one. Callers treating it as fatal is intentional: no mutation
// happens on this path.
var ErrNoSession = errors.New("session: no identity logged in")

// CredentialStore persists owner credentials. Implementations must be safe
// for concurrent use.
type CredentialStore interface {
	// Put stores the bcrypt hash for an owner, overwriting any prior one.
	Put(ctx context.Context, owner string, hash []byte) error
	// Get returns the stored hash, or ok=false when the owner is unknown.
	Get(ctx context.Context, owner string) (hash []byte, ok bool, err error)
}

// Manager binds a credential store to the colony service, switching the
// service's owner identity on login and clearing it on logout.
type Manager struct {
	creds   CredentialStore
	service *core.Service
}

// NewManager wires a credential store to a service.
func NewManager(creds CredentialStore, service *core.Service) *Manager {
	return &Manager{creds: creds, service: service}
}

// Register stores credentials for a new or existing owner.
func (m *Manager) Register(ctx context.Context, owner, password string) error {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return fmt.Errorf("session: empty owner name")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("session: hash password: %w", err)
	}
	return m.creds.Put(ctx, owner, hash)
}

// Login verifies credentials and, on success, sets the service owner and
// reports true. Unknown owners and wrong passwords both report false.
func (m *Manager) Login(ctx context.Context, owner, password string) (bool, error) {
	owner = strings.TrimSpace(owner)
	hash, ok, err := m.creds.Get(ctx, owner)
	if err != nil {
		return false, fmt.Errorf("session: read credentials: %w", err)
	}
	if !ok {
		return false, nil
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return false, nil
	}
	m.service.SetOwner(owner)
	return true, nil
}

// Logout resets in-memory state, clears the locally persisted document
// copy, and drops the owner identity. Without a session it fails fast.
func (m *Manager) Logout(ctx context.Context) error {
	if m.service.Owner() == "" {
		return ErrNoSession
	}
	m.service.ResetState()
	m.service.ClearLocalCopy(ctx)
	m.service.SetOwner("")
	return nil
}
