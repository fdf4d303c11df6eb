// Package account holds the local user accounts that an Entra ID identity
// can be signed in as.  Accounts are matched by email address only and are
// never created by the login flow.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

var (
	ErrNotFound         = errors.New("user not found")
	ErrAlreadyExists    = errors.New("account already exists")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Account is a local user account.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// Store looks up local accounts.
type Store interface {
	// LookupByEmail returns the account whose email matches.  Matching is
	// case insensitive (Unicode case folding).  ErrNotFound is returned when
	// no account matches.
	LookupByEmail(ctx context.Context, email string) (*Account, error)
}

// NormalizeEmail returns the comparison key for an email address: trimmed
// and Unicode case folded.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
