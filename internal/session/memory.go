package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	subject   string
	expiresAt time.Time
}

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]entry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]entry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, subject string, ttl time.Duration) (string, error) {
	token := newToken()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = entry{subject: subject, expiresAt: m.now().Add(ttl)}
	return token, nil
}

func (m *MemoryStore) Lookup(_ context.Context, token string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[token]
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.sessions, token)
		return "", false, nil
	}
	return e.subject, true, nil
}

func (m *MemoryStore) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

var _ Store = (*MemoryStore)(nil)
