package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sabithahmd/Wordpress-Azure-Login/sdk/id"
)

// MemoryStore is an account Store held in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]*Account
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEmail: map[string]*Account{}}
}

// Add an account.  The account's ID is generated when empty.
func (m *MemoryStore) Add(_ context.Context, a Account) (*Account, error) {
	const op = "account.(MemoryStore).Add"
	key := NormalizeEmail(a.Email)
	if key == "" {
		return nil, fmt.Errorf("%s: missing email: %w", op, ErrInvalidParameter)
	}
	if a.ID == "" {
		var err error
		if a.ID, err = id.New("acct"); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[key]; ok {
		return nil, fmt.Errorf("%s: %s: %w", op, a.Email, ErrAlreadyExists)
	}
	stored := a
	m.byEmail[key] = &stored
	out := stored
	return &out, nil
}

// LookupByEmail implements Store.
func (m *MemoryStore) LookupByEmail(_ context.Context, email string) (*Account, error) {
	const op = "account.(MemoryStore).LookupByEmail"
	key := NormalizeEmail(email)
	if key == "" {
		return nil, fmt.Errorf("%s: missing email: %w", op, ErrInvalidParameter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byEmail[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	out := *a
	return &out, nil
}
