package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/sabithahmd/Wordpress-Azure-Login/sdk/id"
)

// DefaultTTL is the lifetime of a session created by a Manager without
// WithTTL.
const DefaultTTL = 30 * time.Minute

// Manager binds sessions in a Store to a named cookie.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
	idPrefix   string
	now        func() time.Time
	logger     hclog.Logger
}

// NewManager creates a Manager for the cookie named cookieName.
//
// Supported options:
//
//	WithTTL
//	WithSecureCookie
//	WithIDPrefix
//	WithLogger
func NewManager(store Store, cookieName string, opt ...Option) (*Manager, error) {
	const op = "session.NewManager"
	switch {
	case store == nil:
		return nil, fmt.Errorf("%s: missing store: %w", op, ErrInvalidParameter)
	case strings.TrimSpace(cookieName) == "":
		return nil, fmt.Errorf("%s: missing cookie name: %w", op, ErrInvalidParameter)
	}
	opts := getManagerOpts(opt...)
	if opts.withTTL <= 0 {
		return nil, fmt.Errorf("%s: ttl must be positive: %w", op, ErrInvalidParameter)
	}
	return &Manager{
		store:      store,
		cookieName: cookieName,
		ttl:        opts.withTTL,
		secure:     opts.withSecureCookie,
		idPrefix:   opts.withIDPrefix,
		now:        time.Now,
		logger:     opts.withLogger,
	}, nil
}

// CookieName returns the name of the cookie carrying the session id.
func (m *Manager) CookieName() string { return m.cookieName }

// Current returns the session named by the request's cookie.  ErrNotFound
// is returned when there's no cookie or the session has expired.
func (m *Manager) Current(r *http.Request) (*Session, error) {
	const op = "Manager.Current"
	sid, ok := m.read(r)
	if !ok {
		return nil, fmt.Errorf("%s: no session cookie: %w", op, ErrNotFound)
	}
	exists, err := m.store.Exists(r.Context(), sid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &Session{id: sid, store: m.store}, nil
}

// Start returns the current session, creating a new one (and setting its
// cookie) when there isn't one.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request) (*Session, error) {
	const op = "Manager.Start"
	s, err := m.Current(r)
	switch {
	case err == nil:
		return s, nil
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s, err = m.New(w, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// New always creates a new session and points the cookie at it.  Any
// previous session is left in the store; callers that rotate sessions
// should Clear first.
func (m *Manager) New(w http.ResponseWriter, r *http.Request) (*Session, error) {
	const op = "Manager.New"
	sid, err := id.New(m.idPrefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := m.store.Create(r.Context(), sid, m.now().Add(m.ttl)); err != nil {
		return nil, fmt.Errorf("%s: unable to create session: %w", op, err)
	}
	m.write(w, sid)
	m.logger.Trace("session created", "cookie", m.cookieName)
	return &Session{id: sid, store: m.store}, nil
}

// Clear destroys the current session, if any, and expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	const op = "Manager.Clear"
	if sid, ok := m.read(r); ok {
		if err := m.store.Destroy(r.Context(), sid); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		m.logger.Trace("session destroyed", "cookie", m.cookieName)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return nil
}

func (m *Manager) read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

func (m *Manager) write(w http.ResponseWriter, sid string) {
	// Lax so the cookie accompanies the top level redirect back from the
	// identity provider.
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
}
