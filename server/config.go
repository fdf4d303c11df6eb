package server

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
	"github.com/sabithahmd/Wordpress-Azure-Login/settings"
)

// Config is the process configuration, read from LOGINWIAZ_ variables.
// Login credentials are not part of it; they come from settings.Loader.
type Config struct {
	ListenAddr     string        `env:"LISTEN_ADDR"     envDefault:":8080"`
	DBPath         string        `env:"DB_PATH"         envDefault:"entra-login.db"`
	SiteURL        string        `env:"SITE_URL"`
	LandingPath    string        `env:"LANDING_PATH"    envDefault:"/account/"`
	CookieSecure   bool          `env:"COOKIE_SECURE"   envDefault:"true"`
	SessionTTL     time.Duration `env:"SESSION_TTL"     envDefault:"30m"`
	AuthTTL        time.Duration `env:"AUTH_TTL"        envDefault:"12h"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT"    envDefault:"10s"`
	CleanupEvery   time.Duration `env:"CLEANUP_EVERY"   envDefault:"10m"`
	ProviderCAFile string        `env:"PROVIDER_CA_FILE"`
	LogLevel       string        `env:"LOG_LEVEL"       envDefault:"info"`
}

// LoadConfig reads a Config.  A nil environment means the process
// environment.
func LoadConfig(environment map[string]string) (*Config, error) {
	const op = "server.LoadConfig"
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{
		Prefix:      settings.EnvPrefix,
		Environment: environment,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// Validate the Config.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrInvalidParameter)
	}
	var result *multierror.Error
	if strings.TrimSpace(c.ListenAddr) == "" {
		result = multierror.Append(result, fmt.Errorf("missing listen address: %w", ErrInvalidParameter))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		result = multierror.Append(result, fmt.Errorf("missing database path: %w", ErrInvalidParameter))
	}
	if c.SiteURL != "" {
		u, err := url.Parse(c.SiteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			result = multierror.Append(result, fmt.Errorf("site url %q must be an absolute http(s) url: %w", c.SiteURL, ErrInvalidParameter))
		}
	}
	if !strings.HasPrefix(c.LandingPath, "/") || strings.HasPrefix(c.LandingPath, "//") {
		result = multierror.Append(result, fmt.Errorf("landing path %q must be a local path: %w", c.LandingPath, ErrInvalidParameter))
	}
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"session ttl", c.SessionTTL},
		{"auth ttl", c.AuthTTL},
		{"http timeout", c.HTTPTimeout},
	} {
		if d.v <= 0 {
			result = multierror.Append(result, fmt.Errorf("%s must be positive: %w", d.name, ErrInvalidParameter))
		}
	}
	if c.CleanupEvery < 0 {
		result = multierror.Append(result, fmt.Errorf("cleanup interval must not be negative: %w", ErrInvalidParameter))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
