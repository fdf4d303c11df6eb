package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sabithahmd/Wordpress-Azure-Login/session"
)

// SessionStore keeps sessions in the sessions and session_values tables.
// Expired rows are invisible to every read and are removed by
// DeleteExpired.
type SessionStore struct {
	db *DB
}

var _ session.Store = (*SessionStore)(nil)

// Create implements session.Store.
func (s *SessionStore) Create(ctx context.Context, id string, expiresAt time.Time) error {
	const op = "sqlite.(SessionStore).Create"
	if id == "" {
		return fmt.Errorf("%s: missing id: %w", op, session.ErrInvalidParameter)
	}
	_, err := s.db.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (id, expires_at, created_at) VALUES (?, ?, ?)`,
		id, toMillis(expiresAt), toMillis(s.db.now()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Exists implements session.Store.
func (s *SessionStore) Exists(ctx context.Context, id string) (bool, error) {
	const op = "sqlite.(SessionStore).Exists"
	var found int
	err := s.db.sqlDB.QueryRowContext(ctx,
		`SELECT 1 FROM sessions WHERE id = ? AND expires_at > ?`,
		id, toMillis(s.db.now())).Scan(&found)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Get implements session.Store.
func (s *SessionStore) Get(ctx context.Context, id, key string) (string, error) {
	const op = "sqlite.(SessionStore).Get"
	var value string
	err := s.db.sqlDB.QueryRowContext(ctx, `
SELECT v.value FROM session_values v
JOIN sessions s ON s.id = v.session_id
WHERE v.session_id = ? AND v.key = ? AND s.expires_at > ?`,
		id, key, toMillis(s.db.now())).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("%s: %w", op, session.ErrNotFound)
	case err != nil:
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// Set implements session.Store.
func (s *SessionStore) Set(ctx context.Context, id, key, value string) error {
	const op = "sqlite.(SessionStore).Set"
	res, err := s.db.sqlDB.ExecContext(ctx, `
INSERT INTO session_values (session_id, key, value)
SELECT ?, ?, ? WHERE EXISTS (SELECT 1 FROM sessions WHERE id = ? AND expires_at > ?)
ON CONFLICT (session_id, key) DO UPDATE SET value = excluded.value`,
		id, key, value, id, toMillis(s.db.now()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, session.ErrNotFound)
	}
	return nil
}

// Take implements session.Store.  The read and delete are one statement, so
// concurrent Takes of a key can't both see it.
func (s *SessionStore) Take(ctx context.Context, id, key string) (string, error) {
	const op = "sqlite.(SessionStore).Take"
	var value string
	err := s.db.sqlDB.QueryRowContext(ctx, `
DELETE FROM session_values
WHERE session_id = ? AND key = ?
  AND EXISTS (SELECT 1 FROM sessions WHERE id = ? AND expires_at > ?)
RETURNING value`,
		id, key, id, toMillis(s.db.now())).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("%s: %w", op, session.ErrNotFound)
	case err != nil:
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// Destroy implements session.Store.
func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	const op = "sqlite.(SessionStore).Destroy"
	if _, err := s.db.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteExpired removes expired sessions and returns how many were removed.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	const op = "sqlite.(SessionStore).DeleteExpired"
	res, err := s.db.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(s.db.now()))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
