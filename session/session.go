// Package session provides server side sessions addressed by an opaque id
// carried in a cookie.  Values are kept in a Store (see MemoryStore and the
// storage/sqlite package) and never in the cookie itself.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Store persists sessions and their key/value entries.  Implementations
// must treat an expired session as missing and must make Take atomic: of
// two concurrent Takes of the same key at most one returns the value.
type Store interface {
	// Create a session which expires at expiresAt.
	Create(ctx context.Context, id string, expiresAt time.Time) error

	// Exists reports whether the session exists and has not expired.
	Exists(ctx context.Context, id string) (bool, error)

	// Get returns the value for key.  ErrNotFound is returned when either
	// the session or the key doesn't exist.
	Get(ctx context.Context, id, key string) (string, error)

	// Set the value for key.  ErrNotFound is returned when the session
	// doesn't exist.
	Set(ctx context.Context, id, key, value string) error

	// Take returns the value for key and removes it in one step.
	Take(ctx context.Context, id, key string) (string, error)

	// Destroy the session and all of its entries.  Destroying a missing
	// session is not an error.
	Destroy(ctx context.Context, id string) error
}

// Session is a handle to one stored session.
type Session struct {
	id    string
	store Store
}

// New returns a handle for an existing session id.
func New(id string, store Store) (*Session, error) {
	const op = "session.New"
	switch {
	case id == "":
		return nil, fmt.Errorf("%s: missing id: %w", op, ErrInvalidParameter)
	case store == nil:
		return nil, fmt.Errorf("%s: missing store: %w", op, ErrInvalidParameter)
	}
	return &Session{id: id, store: store}, nil
}

// ID returns the session's opaque identifier.
func (s *Session) ID() string { return s.id }

// Get returns the value stored under key.
func (s *Session) Get(ctx context.Context, key string) (string, error) {
	const op = "Session.Get"
	v, err := s.store.Get(ctx, s.id, key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// Set stores value under key.
func (s *Session) Set(ctx context.Context, key, value string) error {
	const op = "Session.Set"
	if key == "" {
		return fmt.Errorf("%s: missing key: %w", op, ErrInvalidParameter)
	}
	if err := s.store.Set(ctx, s.id, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Take returns the value stored under key and removes it, so a value can
// only be taken once.
func (s *Session) Take(ctx context.Context, key string) (string, error) {
	const op = "Session.Take"
	v, err := s.store.Take(ctx, s.id, key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// Destroy removes the session from its store.
func (s *Session) Destroy(ctx context.Context) error {
	const op = "Session.Destroy"
	if err := s.store.Destroy(ctx, s.id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
