// Package server wires the login components into an http.Handler and runs
// it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/sabithahmd/Wordpress-Azure-Login/account"
	"github.com/sabithahmd/Wordpress-Azure-Login/entra"
	"github.com/sabithahmd/Wordpress-Azure-Login/entra/callback"
	"github.com/sabithahmd/Wordpress-Azure-Login/login"
	sdkHttp "github.com/sabithahmd/Wordpress-Azure-Login/sdk/http"
	"github.com/sabithahmd/Wordpress-Azure-Login/session"
	"github.com/sabithahmd/Wordpress-Azure-Login/settings"
)

var ErrInvalidParameter = errors.New("invalid parameter")

const (
	// LoginCookie carries the short lived session holding the PKCE
	// verifier.
	LoginCookie = "entra_login"

	// AuthCookie carries the session of a signed in account.
	AuthCookie = "entra_auth"
)

const shutdownTimeout = 10 * time.Second

// ExpiredSessionDeleter is implemented by session stores which can purge
// expired sessions in bulk.
type ExpiredSessionDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Server serves the login flow.
type Server struct {
	config       *Config
	loader       *settings.Loader
	loginSess    *session.Manager
	establisher  *login.Establisher
	sessions     session.Store
	authCodeOpts []callback.Option
	errResponse  callback.ErrorResponseFunc
	logger       hclog.Logger
	handler      http.Handler
}

// New creates a Server.  Sessions for both cookies live in sessions.
//
// Supported options:
//
//	WithLogger
//	WithProviderOptions
//	WithErrorResponse
func New(c *Config, loader *settings.Loader, accounts account.Store, sessions session.Store, opt ...Option) (*Server, error) {
	const op = "server.New"
	switch {
	case loader == nil:
		return nil, fmt.Errorf("%s: missing settings loader: %w", op, ErrInvalidParameter)
	case accounts == nil:
		return nil, fmt.Errorf("%s: missing account store: %w", op, ErrInvalidParameter)
	case sessions == nil:
		return nil, fmt.Errorf("%s: missing session store: %w", op, ErrInvalidParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts := getServerOpts(opt...)
	logger := opts.withLogger

	var caPEM string
	if c.ProviderCAFile != "" {
		b, err := os.ReadFile(c.ProviderCAFile)
		if err != nil {
			return nil, fmt.Errorf("%s: unable to read provider CA: %w", op, err)
		}
		caPEM = string(b)
	}
	client, err := sdkHttp.NewClient(caPEM, c.HTTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loginSess, err := session.NewManager(sessions, LoginCookie,
		session.WithTTL(c.SessionTTL),
		session.WithSecureCookie(c.CookieSecure),
		session.WithIDPrefix("login"),
		session.WithLogger(logger.Named("login-session")),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	authSess, err := session.NewManager(sessions, AuthCookie,
		session.WithTTL(c.AuthTTL),
		session.WithSecureCookie(c.CookieSecure),
		session.WithIDPrefix("auth"),
		session.WithLogger(logger.Named("auth-session")),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	est, err := login.NewEstablisher(accounts, authSess,
		login.WithLandingURL(c.LandingPath),
		login.WithLogger(logger.Named("login")),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// The shared client comes first so WithProviderOptions can replace it.
	providerOpts := append([]entra.Option{
		entra.WithHTTPClient(client),
		entra.WithLogger(logger.Named("entra")),
	}, opts.withProviderOptions...)
	authCodeOpts := []callback.Option{
		callback.WithSiteURL(c.SiteURL),
		callback.WithProviderOptions(providerOpts...),
		callback.WithLogger(logger.Named("callback")),
	}

	s := &Server{
		config:       c,
		loader:       loader,
		loginSess:    loginSess,
		establisher:  est,
		sessions:     sessions,
		authCodeOpts: authCodeOpts,
		errResponse:  opts.withErrorResponse,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login/entra", s.handleLogin)
	mux.HandleFunc("GET /login/entra/url", s.handleLoginURL)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET "+exactPattern(c.LandingPath), s.handleAccount)
	mux.HandleFunc("/", s.handleHome)

	authCode, err := callback.AuthCode(loader, loginSess, est, opts.withErrorResponse, authCodeOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.handler = authCode(login.PasswordGuard(loader, logger.Named("password-guard"), mux))
	return s, nil
}

// exactPattern keeps a trailing slash path from matching its whole subtree.
func exactPattern(p string) string {
	if strings.HasSuffix(p, "/") {
		return p + "{$}"
	}
	return p
}

// Handler returns the Server's root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	const op = "Server.Run"
	l, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done.  Expired sessions are
// purged every Config.CleanupEvery when the session store supports it.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	const op = "Server.Serve"
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if d, ok := s.sessions.(ExpiredSessionDeleter); ok && s.config.CleanupEvery > 0 {
		go s.cleanup(ctx, d, s.config.CleanupEvery)
	}

	srvCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", l.Addr().String())
		srvCh <- srv.Serve(l)
	}()

	select {
	case err := <-srvCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: shutdown: %w", op, err)
	}
	return nil
}

func (s *Server) cleanup(ctx context.Context, d ExpiredSessionDeleter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := d.DeleteExpired(ctx)
			if err != nil {
				s.logger.Error("unable to delete expired sessions", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("deleted expired sessions", "count", n)
			}
		}
	}
}
