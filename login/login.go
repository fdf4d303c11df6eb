// Package login turns a verified email address into a signed in local
// account.
package login

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"
	"github.com/sabithahmd/Wordpress-Azure-Login/account"
	"github.com/sabithahmd/Wordpress-Azure-Login/session"
)

// AccountIDKey is the auth session entry holding the signed in account.
const AccountIDKey = "account_id"

// DefaultLandingURL is where a signed in user is sent without
// WithLandingURL.
const DefaultLandingURL = "/account/"

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNotSignedIn      = errors.New("not signed in")
)

// Establisher signs a user agent in as a local account.
type Establisher struct {
	accounts   account.Store
	auth       *session.Manager
	landingURL string
	logger     hclog.Logger
}

// NewEstablisher creates an Establisher.  auth manages the long lived
// authentication session, distinct from the short lived session that holds
// the PKCE verifier.
//
// Supported options:
//
//	WithLandingURL
//	WithLogger
func NewEstablisher(accounts account.Store, auth *session.Manager, opt ...Option) (*Establisher, error) {
	const op = "login.NewEstablisher"
	switch {
	case accounts == nil:
		return nil, fmt.Errorf("%s: missing account store: %w", op, ErrInvalidParameter)
	case auth == nil:
		return nil, fmt.Errorf("%s: missing session manager: %w", op, ErrInvalidParameter)
	}
	opts := getEstablisherOpts(opt...)
	return &Establisher{
		accounts:   accounts,
		auth:       auth,
		landingURL: opts.withLandingURL,
		logger:     opts.withLogger,
	}, nil
}

// LoginByEmail signs the user agent in as the account registered with email
// and redirects it to the landing page.  Any previous auth session is
// destroyed first.  account.ErrNotFound is returned, and nothing is written,
// when no account matches; accounts are never created here.
func (e *Establisher) LoginByEmail(ctx context.Context, w http.ResponseWriter, r *http.Request, email string) error {
	const op = "Establisher.LoginByEmail"
	if email == "" {
		return fmt.Errorf("%s: missing email: %w", op, ErrInvalidParameter)
	}
	a, err := e.accounts.LookupByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := e.auth.Clear(w, r); err != nil {
		return fmt.Errorf("%s: unable to clear previous session: %w", op, err)
	}
	s, err := e.auth.New(w, r)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Set(ctx, AccountIDKey, a.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	e.logger.Info("signed in", "account_id", a.ID)
	http.Redirect(w, r, e.landingURL, http.StatusFound)
	return nil
}

// CurrentAccountID returns the account signed in on the request, or
// ErrNotSignedIn.
func (e *Establisher) CurrentAccountID(r *http.Request) (string, error) {
	const op = "Establisher.CurrentAccountID"
	s, err := e.auth.Current(r)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrNotSignedIn)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.Get(r.Context(), AccountIDKey)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrNotSignedIn)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Logout destroys the auth session.
func (e *Establisher) Logout(w http.ResponseWriter, r *http.Request) error {
	const op = "Establisher.Logout"
	if err := e.auth.Clear(w, r); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
