package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-hclog"
	"github.com/sabithahmd/Wordpress-Azure-Login/entra"
)

// EnvPrefix is prepended to every environment variable the Loader reads.
const EnvPrefix = "LOGINWIAZ_"

// envCredentials are read when the credential source is
// entra.SourceEnvironment: LOGINWIAZ_CLIENT_ID, LOGINWIAZ_CLIENT_SECRET and
// LOGINWIAZ_TENANT_ID.
type envCredentials struct {
	ClientId     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	TenantId     string `env:"TENANT_ID"`
}

// Settings is a snapshot of the stored options with the credentials
// resolved from their source.
type Settings struct {
	CredStorage          entra.Source
	ClientId             string
	ClientSecret         entra.ClientSecret
	TenantId             string
	RedirectUrl          string
	DisablePasswordLogin bool
}

// Loader reads Settings on demand.  Nothing is cached, so changes to the
// Store or the environment apply to the next request.
type Loader struct {
	store       Store
	environment map[string]string
	providerCA  string
	logger      hclog.Logger
}

// NewLoader creates a Loader over store.
//
// Supported options:
//
//	WithEnvironment
//	WithProviderCA
//	WithLogger
func NewLoader(store Store, opt ...Option) (*Loader, error) {
	const op = "settings.NewLoader"
	if store == nil {
		return nil, fmt.Errorf("%s: missing store: %w", op, ErrInvalidParameter)
	}
	opts := getLoaderOpts(opt...)
	return &Loader{
		store:       store,
		environment: opts.withEnvironment,
		providerCA:  opts.withProviderCA,
		logger:      opts.withLogger,
	}, nil
}

// Load reads the options.  An unset credential storage option means
// entra.SourceDatabase.
func (l *Loader) Load(ctx context.Context) (*Settings, error) {
	const op = "Loader.Load"
	get := func(key string) (string, error) {
		v, _, err := l.store.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("%s: unable to read %s: %w", op, key, err)
		}
		return strings.TrimSpace(v), nil
	}

	var s Settings
	source, err := get(KeyCredStorage)
	if err != nil {
		return nil, err
	}
	s.CredStorage = entra.Source(source)
	if s.CredStorage == "" {
		s.CredStorage = entra.SourceDatabase
	}
	if s.RedirectUrl, err = get(KeyRedirectUrl); err != nil {
		return nil, err
	}
	disable, err := get(KeyDisablePasswordLogin)
	if err != nil {
		return nil, err
	}
	s.DisablePasswordLogin = disable == Yes

	switch s.CredStorage {
	case entra.SourceEnvironment:
		var creds envCredentials
		if err := env.ParseWithOptions(&creds, env.Options{
			Prefix:      EnvPrefix,
			Environment: l.environment,
		}); err != nil {
			return nil, fmt.Errorf("%s: unable to read environment: %w", op, err)
		}
		s.ClientId = strings.TrimSpace(creds.ClientId)
		s.ClientSecret = entra.ClientSecret(strings.TrimSpace(creds.ClientSecret))
		s.TenantId = strings.TrimSpace(creds.TenantId)
	default:
		if s.ClientId, err = get(KeyClientId); err != nil {
			return nil, err
		}
		secret, err := get(KeyClientSecret)
		if err != nil {
			return nil, err
		}
		s.ClientSecret = entra.ClientSecret(secret)
		if s.TenantId, err = get(KeyTenantId); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// Read loads the options and builds the provider configuration from them.
// Incomplete or invalid settings are reported as entra.ErrInvalidConfig.
func (l *Loader) Read(ctx context.Context) (*entra.Config, error) {
	const op = "Loader.Read"
	s, err := l.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := entra.NewConfig(s.ClientId, s.ClientSecret, s.TenantId, s.RedirectUrl,
		entra.WithSource(s.CredStorage),
		entra.WithProviderCA(l.providerCA),
	)
	if err != nil {
		l.logger.Warn("login configuration is incomplete", "source", s.CredStorage, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// PasswordLoginDisabled reports whether password based login is switched
// off.
func (l *Loader) PasswordLoginDisabled(ctx context.Context) (bool, error) {
	const op = "Loader.PasswordLoginDisabled"
	v, _, err := l.store.Get(ctx, KeyDisablePasswordLogin)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return strings.TrimSpace(v) == Yes, nil
}
