package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sabithahmd/Wordpress-Azure-Login/settings"
)

// SettingsStore keeps options in the options table.
type SettingsStore struct {
	db *DB
}

var _ settings.Store = (*SettingsStore)(nil)

// Get implements settings.Store.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "sqlite.(SettingsStore).Get"
	var value string
	err := s.db.sqlDB.QueryRowContext(ctx, `SELECT value FROM options WHERE name = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return value, true, nil
}

// Set implements settings.Store.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	const op = "sqlite.(SettingsStore).Set"
	if key == "" {
		return fmt.Errorf("%s: missing key: %w", op, ErrInvalidParameter)
	}
	_, err := s.db.sqlDB.ExecContext(ctx, `
INSERT INTO options (name, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, toMillis(s.db.now()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete removes an option.
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	const op = "sqlite.(SettingsStore).Delete"
	if _, err := s.db.sqlDB.ExecContext(ctx, `DELETE FROM options WHERE name = ?`, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
