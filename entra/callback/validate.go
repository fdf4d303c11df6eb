package callback

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sabithahmd/Wordpress-Azure-Login/session"
)

// CodeVerifierKey is the PKCE session entry holding the code verifier.
const CodeVerifierKey = "code_verifier"

var (
	ErrRedirectURIMismatch = errors.New("redirect URI mismatch")
	ErrStateMismatch       = errors.New("state mismatch")
	ErrVerifierNotFound    = errors.New("code verifier not found in session")
	ErrNoCode              = errors.New("request has no authorization code")
	ErrInvalidParameter    = errors.New("invalid parameter")
)

// Step is a state of callback validation.  A callback moves through the
// steps in order and stops at Valid or Rejected.
type Step int

const (
	NoCallback Step = iota
	ValidatingRedirectURI
	ValidatingState
	ValidatingVerifierPresent
	Valid
	Rejected
)

func (s Step) String() string {
	switch s {
	case NoCallback:
		return "no-callback"
	case ValidatingRedirectURI:
		return "validating-redirect-uri"
	case ValidatingState:
		return "validating-state"
	case ValidatingVerifierPresent:
		return "validating-verifier-present"
	case Valid:
		return "valid"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// ValidationError is a rejected callback.  Step is the check that failed.
type ValidationError struct {
	Step Step
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("callback rejected at %s: %s", e.Step, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Callback is a validated authorization response.
type Callback struct {
	Code     string
	State    string
	Verifier string
}

// IsCallback reports whether the request carries an authorization code.
func IsCallback(r *http.Request) bool {
	return r != nil && r.URL.Query().Has("code")
}

// CurrentURL is the request URL without its query, as seen by the user
// agent.  With a site URL the path is appended to it; without one it's
// built from the request's scheme and Host.
func CurrentURL(r *http.Request, siteURL string) string {
	if siteURL != "" {
		return strings.TrimSuffix(siteURL, "/") + "/" + strings.TrimPrefix(r.URL.EscapedPath(), "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.EscapedPath()
}

// Validate checks an authorization response against the PKCE session.  The
// checks run in a fixed order and the first failure is returned as a
// *ValidationError:
//
//  1. the request URL (see CurrentURL) is exactly redirectURL
//  2. the state parameter is the session id
//  3. the session holds a code verifier
//
// The verifier is taken from the session in step 3, so a callback can only
// be validated once.  A nil session means the user agent has no PKCE session
// and fails step 2.  URL and state comparisons are constant time.
func Validate(ctx context.Context, r *http.Request, siteURL, redirectURL string, s *session.Session) (*Callback, error) {
	const op = "callback.Validate"
	switch {
	case r == nil:
		return nil, fmt.Errorf("%s: missing request: %w", op, ErrInvalidParameter)
	case !IsCallback(r):
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Step: NoCallback, Err: ErrNoCode})
	}

	q := r.URL.Query()
	current := CurrentURL(r, siteURL)
	if !equal(current, redirectURL) {
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Step: ValidatingRedirectURI, Err: ErrRedirectURIMismatch})
	}

	state := q.Get("state")
	if s == nil || state == "" || !equal(state, s.ID()) {
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Step: ValidatingState, Err: ErrStateMismatch})
	}

	verifier, err := s.Take(ctx, CodeVerifierKey)
	switch {
	case errors.Is(err, session.ErrNotFound), err == nil && verifier == "":
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Step: ValidatingVerifierPresent, Err: ErrVerifierNotFound})
	case err != nil:
		return nil, fmt.Errorf("%s: unable to read code verifier: %w", op, err)
	}

	return &Callback{
		Code:     q.Get("code"),
		State:    state,
		Verifier: verifier,
	}, nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
