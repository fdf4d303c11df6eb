package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sabithahmd/Wordpress-Azure-Login/account"
	"github.com/sabithahmd/Wordpress-Azure-Login/sdk/id"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// AccountStore keeps local accounts in the accounts table.  Emails are
// unique after account.NormalizeEmail.
type AccountStore struct {
	db *DB
}

var _ account.Store = (*AccountStore)(nil)

// Add an account.  The ID is generated when empty.
func (s *AccountStore) Add(ctx context.Context, a account.Account) (*account.Account, error) {
	const op = "sqlite.(AccountStore).Add"
	folded := account.NormalizeEmail(a.Email)
	if folded == "" {
		return nil, fmt.Errorf("%s: missing email: %w", op, account.ErrInvalidParameter)
	}
	if a.ID == "" {
		var err error
		if a.ID, err = id.New("acct"); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	a.Email = strings.TrimSpace(a.Email)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.db.now()
	}
	a.CreatedAt = fromMillis(toMillis(a.CreatedAt))

	_, err := s.db.sqlDB.ExecContext(ctx, `
INSERT INTO accounts (id, email, email_folded, display_name, created_at)
VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Email, folded, a.DisplayName, toMillis(a.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %s: %w", op, a.Email, account.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

// LookupByEmail implements account.Store.
func (s *AccountStore) LookupByEmail(ctx context.Context, email string) (*account.Account, error) {
	const op = "sqlite.(AccountStore).LookupByEmail"
	folded := account.NormalizeEmail(email)
	if folded == "" {
		return nil, fmt.Errorf("%s: missing email: %w", op, account.ErrInvalidParameter)
	}
	var (
		a         account.Account
		createdAt int64
	)
	err := s.db.sqlDB.QueryRowContext(ctx, `
SELECT id, email, display_name, created_at FROM accounts WHERE email_folded = ?`, folded).
		Scan(&a.ID, &a.Email, &a.DisplayName, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%s: %w", op, account.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.CreatedAt = fromMillis(createdAt)
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
