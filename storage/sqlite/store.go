// Package sqlite persists options, accounts and sessions in a single SQLite
// file using the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var ErrInvalidParameter = errors.New("invalid parameter")

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// DB is an open database.  Its stores share the one connection pool.
type DB struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (creating if needed) the database at path and applies the
// bundled migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	const op = "sqlite.Open"
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%s: storage path is required: %w", op, ErrInvalidParameter)
	}
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "synchronous(NORMAL)")
	dsn := "file:" + filepath.ToSlash(filepath.Clean(path)) + "?" + q.Encode()

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open sqlite db: %w", op, err)
	}
	// One writer at a time; readers in WAL mode don't block it.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%s: ping sqlite db: %w", op, err)
	}
	if err := applyMigrations(ctx, sqlDB, migrationFS, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%s: run migrations: %w", op, err)
	}
	return &DB{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the underlying database.
func (d *DB) Close() error {
	if d == nil || d.sqlDB == nil {
		return nil
	}
	return d.sqlDB.Close()
}

// Settings returns the options store.
func (d *DB) Settings() *SettingsStore { return &SettingsStore{db: d} }

// Accounts returns the account store.
func (d *DB) Accounts() *AccountStore { return &AccountStore{db: d} }

// Sessions returns the session store.
func (d *DB) Sessions() *SessionStore { return &SessionStore{db: d} }
