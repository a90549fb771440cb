package store

import (
	"context"
	"sync"

	"github.com/joss/debate/internal/domain"
)

// Memory keeps client state in process memory only.
type Memory struct {
	mu      sync.Mutex
	session *domain.Session
	prefs   map[string]string
	closed  bool
}

var _ Local = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{prefs: make(map[string]string)}
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) LoadSession(ctx context.Context) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.session == nil {
		return nil, NewNotFoundError("session", "")
	}
	cp := *m.session
	return &cp, nil
}

func (m *Memory) SaveSession(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	cp := *s
	m.session = &cp
	return nil
}

func (m *Memory) ClearSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.session = nil
	return nil
}

func (m *Memory) GetPref(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrClosed
	}
	v, ok := m.prefs[key]
	if !ok {
		return "", NewNotFoundError("preference", key)
	}
	return v, nil
}

func (m *Memory) SetPref(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.prefs[key] = value
	return nil
}
