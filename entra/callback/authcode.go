package callback

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sabithahmd/Wordpress-Azure-Login/entra"
	"github.com/sabithahmd/Wordpress-Azure-Login/session"
)

// ConfigReader returns the provider configuration for the current request.
// *settings.Loader satisfies it.
type ConfigReader interface {
	Read(ctx context.Context) (*entra.Config, error)
}

// SessionStarter returns the PKCE session for the request.  Start creates
// one if needed; Current returns session.ErrNotFound instead.
// *session.Manager satisfies it.
type SessionStarter interface {
	Start(w http.ResponseWriter, r *http.Request) (*session.Session, error)
	Current(r *http.Request) (*session.Session, error)
}

// Establisher signs the user agent in as the local account for an email
// address.  *login.Establisher satisfies it.
type Establisher interface {
	LoginByEmail(ctx context.Context, w http.ResponseWriter, r *http.Request, email string) error
}

// AuthCode creates middleware which completes the authorization code flow
// when a request carries a "code" parameter.  Other requests, including an
// identity provider error redirect without a code, reach the wrapped
// handler untouched.
//
// For a callback it validates the request (see Validate), exchanges the code
// and verifier for an access token, reads the user's profile and hands the
// email address to the Establisher, which writes the success response.  The
// first failure stops the flow and is passed to the ErrorResponseFunc.
//
// Supported options:
//
//	WithSiteURL
//	WithProviderOptions
//	WithLogger
func AuthCode(cr ConfigReader, sessions SessionStarter, est Establisher, eFn ErrorResponseFunc, opt ...Option) (func(http.Handler) http.Handler, error) {
	const op = "callback.AuthCode"
	switch {
	case cr == nil:
		return nil, fmt.Errorf("%s: missing config reader: %w", op, ErrInvalidParameter)
	case sessions == nil:
		return nil, fmt.Errorf("%s: missing session starter: %w", op, ErrInvalidParameter)
	case est == nil:
		return nil, fmt.Errorf("%s: missing establisher: %w", op, ErrInvalidParameter)
	}
	if eFn == nil {
		eFn = DefaultErrorResponse
	}
	opts := getAuthCodeOpts(opt...)
	logger := opts.withLogger

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !IsCallback(req) {
				next.ServeHTTP(w, req)
				return
			}
			ctx := req.Context()
			reqState := req.URL.Query().Get("state")
			fail := func(err error) {
				logger.Warn("login failed", "path", req.URL.Path, "reason", Message(err), "error", err)
				eFn(reqState, err, w, req)
			}

			c, err := cr.Read(ctx)
			if err != nil {
				fail(err)
				return
			}
			p, err := entra.NewProvider(c, opts.withProviderOptions...)
			if err != nil {
				fail(err)
				return
			}
			// A callback never starts a session: without one it fails the
			// state check.
			s, err := sessions.Current(req)
			switch {
			case errors.Is(err, session.ErrNotFound):
				s = nil
			case err != nil:
				fail(err)
				return
			}
			cb, err := Validate(ctx, req, opts.withSiteURL, c.RedirectUrl, s)
			if err != nil {
				fail(err)
				return
			}
			data, err := p.Exchange(ctx, cb.Verifier, cb.Code)
			if err != nil {
				fail(err)
				return
			}
			profile, err := p.UserInfo(ctx, data.AccessToken)
			if err != nil {
				fail(err)
				return
			}
			if err := est.LoginByEmail(ctx, w, req, profile.Mail); err != nil {
				fail(err)
				return
			}
			logger.Debug("login complete", "source", c.Source)
		})
	}, nil
}
