// Package store persists the local client state: the signed-in session and
// a handful of preferences. Two backends exist, sqlite for the binary and an
// in-memory map for tests and ephemeral runs.
package store

import (
	"context"

	"github.com/joss/debate/internal/domain"
)

// Store is the minimal interface all stores implement.
type Store interface {
	// Ping verifies the backend is usable.
	Ping(ctx context.Context) error
	// Close releases any resources held by the store.
	Close() error
}

// SessionStore keeps at most one session.
type SessionStore interface {
	Store
	LoadSession(ctx context.Context) (*domain.Session, error)
	SaveSession(ctx context.Context, s *domain.Session) error
	ClearSession(ctx context.Context) error
}

// Preferences is a small key/value area for remembered user input.
type Preferences interface {
	GetPref(ctx context.Context, key string) (string, error)
	SetPref(ctx context.Context, key, value string) error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Local is a store holding both the session and preferences.
type Local interface {
	SessionStore
	Preferences
}

// Open returns the backend named kind rooted at dataDir.
func Open(kind, dataDir string) (Local, error) {
	if kind == BackendMemory {
		return NewMemory(), nil
	}
	return OpenSQLite(dataDir)
}
