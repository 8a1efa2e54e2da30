// Package identity manages the stable visitor identifier. The backing
// store is visitor-scoped (the server-side analogue of browser-local
// storage), so the id lives under a fixed key and is created exactly once.
package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/brightline/growth-engine/internal/store"
)

const visitorKey = "visitor:id"

// Manager issues and remembers the visitor identifier.
type Manager struct {
	kv store.KV
}

// NewManager creates an identity manager over the given store.
func NewManager(kv store.KV) *Manager {
	return &Manager{kv: kv}
}

// VisitorID returns the persisted visitor id, creating and storing a new
// one on first call. The id is opaque and immutable for the store's
// lifetime.
func (m *Manager) VisitorID(ctx context.Context) (string, error) {
	val, err := m.kv.Get(ctx, visitorKey)
	if err == nil && len(val) > 0 {
		return string(val), nil
	}
	if err != nil && err != store.ErrNotFound {
		return "", err
	}

	id := uuid.NewString()
	if err := m.kv.Set(ctx, visitorKey, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
