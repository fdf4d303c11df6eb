package session

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	expiresAt time.Time
	values    map[string]string
}

// MemoryStore is a Store held in process memory.  Expired sessions are
// dropped lazily when they're next touched.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: map[string]*memorySession{},
		now:      time.Now,
	}
}

// lookup must be called with the lock held.
func (m *MemoryStore) lookup(id string) (*memorySession, bool) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if !m.now().Before(s.expiresAt) {
		delete(m.sessions, id)
		return nil, false
	}
	return s, true
}

// Create implements Store.
func (m *MemoryStore) Create(_ context.Context, id string, expiresAt time.Time) error {
	if id == "" {
		return ErrInvalidParameter
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &memorySession{expiresAt: expiresAt, values: map[string]string{}}
	return nil
}

// Exists implements Store.
func (m *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(id)
	return ok, nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.lookup(id)
	if !ok {
		return "", ErrNotFound
	}
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, id, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.lookup(id)
	if !ok {
		return ErrNotFound
	}
	s.values[key] = value
	return nil
}

// Take implements Store.
func (m *MemoryStore) Take(_ context.Context, id, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.lookup(id)
	if !ok {
		return "", ErrNotFound
	}
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	delete(s.values, key)
	return v, nil
}

// Destroy implements Store.
func (m *MemoryStore) Destroy(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// DeleteExpired drops every expired session and returns how many were
// dropped.
func (m *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var n int64
	for id, s := range m.sessions {
		if !now.Before(s.expiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
