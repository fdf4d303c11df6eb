// Package settings loads the Entra ID login configuration.  Values are kept
// in a Store (the options table of storage/sqlite, or memory in tests) and
// the application credentials may instead come from the environment.
package settings

import (
	"context"
	"errors"
	"sync"
)

// Option names as persisted in a Store.
const (
	KeyCredStorage          = "loginwiaz_cred_storage"
	KeyClientId             = "loginwiaz_client_id_value"
	KeyClientSecret         = "loginwiaz_client_secret_value"
	KeyTenantId             = "loginwiaz_tenant_id_value"
	KeyRedirectUrl          = "loginwiaz_redirect_url_value"
	KeyDisablePasswordLogin = "loginwiaz_disable_password_login"
)

// Keys lists every option name a Store may hold.
var Keys = []string{
	KeyCredStorage,
	KeyClientId,
	KeyClientSecret,
	KeyTenantId,
	KeyRedirectUrl,
	KeyDisablePasswordLogin,
}

// Yes is the stored value that turns a flag option on.
const Yes = "yes"

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnknownKey       = errors.New("unknown setting")
)

// Store persists option values by name.
type Store interface {
	// Get returns the value and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the value.
	Set(ctx context.Context, key, value string) error
}

// IsKnownKey reports whether key is one of Keys.
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a MemoryStore holding a copy of values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrInvalidParameter
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
