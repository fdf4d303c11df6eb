package callback

import (
	"fmt"
	"net/http"

	"github.com/sabithahmd/Wordpress-Azure-Login/entra"
)

// Begin starts a login attempt.  A new PKCE verifier is stored in the
// request's session under CodeVerifierKey and only then is the authorize URL
// (carrying the challenge and the session id as state) returned, so the
// caller may redirect to it or render it.
//
// Supported options:
//
//	WithProviderOptions
//	WithLogger
func Begin(w http.ResponseWriter, r *http.Request, cr ConfigReader, sessions SessionStarter, opt ...Option) (string, error) {
	const op = "callback.Begin"
	switch {
	case cr == nil:
		return "", fmt.Errorf("%s: missing config reader: %w", op, ErrInvalidParameter)
	case sessions == nil:
		return "", fmt.Errorf("%s: missing session starter: %w", op, ErrInvalidParameter)
	}
	opts := getAuthCodeOpts(opt...)
	ctx := r.Context()

	c, err := cr.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	p, err := entra.NewProvider(c, opts.withProviderOptions...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s, err := sessions.Start(w, r)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	v, err := entra.NewCodeVerifier()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Set(ctx, CodeVerifierKey, v.Verifier()); err != nil {
		return "", fmt.Errorf("%s: unable to store code verifier: %w", op, err)
	}
	u, err := p.AuthURL(v.Challenge(), s.ID())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	opts.withLogger.Trace("login started", "source", c.Source)
	return u, nil
}
