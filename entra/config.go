package entra

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	sdkHttp "github.com/sabithahmd/Wordpress-Azure-Login/sdk/http"
)

// ClientSecret is an Entra ID application client secret.
type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// Source identifies where the application credentials were read from.
type Source string

const (
	SourceDatabase    Source = "database"
	SourceEnvironment Source = "environment"
)

// DefaultScopes are requested when a Config has no Scopes.
var DefaultScopes = []string{"User.Read"}

// Config represents the configuration of an Entra ID application registration
// used for the authorization code flow with PKCE.  A Config is immutable once
// loaded for a request.
type Config struct {
	// ClientId is the application (client) id
	ClientId string

	// ClientSecret is the application's client secret
	ClientSecret ClientSecret

	// TenantId is the directory (tenant) id.  It also accepts the
	// "common", "organizations" and "consumers" aliases.
	TenantId string

	// RedirectUrl is the registered redirect URI.  The callback must arrive at
	// exactly this URL.
	RedirectUrl string

	// Source is where the ClientId, ClientSecret and TenantId were read from.
	Source Source

	// Scopes requested during authorization.  Defaults to DefaultScopes.
	Scopes []string

	// ProviderCA is an optional CA cert to use when sending requests to the provider.
	ProviderCA string
}

// NewConfig composes a new config for an Entra ID application.
// Supported options:
//
//	WithSource
//	WithScopes
//	WithProviderCA
func NewConfig(clientId string, clientSecret ClientSecret, tenantId string, redirectUrl string, opt ...Option) (*Config, error) {
	const op = "NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		ClientId:     clientId,
		ClientSecret: clientSecret,
		TenantId:     tenantId,
		RedirectUrl:  redirectUrl,
		Source:       opts.withSource,
		Scopes:       opts.withScopes,
		ProviderCA:   opts.withProviderCA,
	}
	if len(c.Scopes) == 0 {
		c.Scopes = append([]string(nil), DefaultScopes...)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid provider config: %w", op, err)
	}
	return c, nil
}

// Validate the configuration.  Every problem is reported, not just the
// first, and the error always matches ErrInvalidConfig.  Missing values also
// match ErrMissingConfig.  The RedirectUrl must be
// an absolute http or https URL without a query or fragment.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if c.ClientId == "" {
		result = multierror.Append(result, fmt.Errorf("client id is empty: %w", ErrMissingConfig))
	}
	if c.ClientSecret == "" {
		result = multierror.Append(result, fmt.Errorf("client secret is empty: %w", ErrMissingConfig))
	}
	if c.TenantId == "" {
		result = multierror.Append(result, fmt.Errorf("tenant id is empty: %w", ErrMissingConfig))
	}
	if c.RedirectUrl == "" {
		result = multierror.Append(result, fmt.Errorf("redirect URL is empty: %w", ErrMissingConfig))
	} else if err := validateRedirectUrl(c.RedirectUrl); err != nil {
		result = multierror.Append(result, err)
	}
	switch c.Source {
	case SourceDatabase, SourceEnvironment:
	default:
		result = multierror.Append(result, fmt.Errorf("credential source %q is not supported: %w", c.Source, ErrInvalidParameter))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidConfig, err)
	}
	return nil
}

func validateRedirectUrl(redirectUrl string) error {
	u, err := url.Parse(redirectUrl)
	if err != nil {
		return fmt.Errorf("redirect URL %s is invalid: %v: %w", redirectUrl, err, ErrInvalidParameter)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("redirect URL %s scheme %q is not http or https: %w", redirectUrl, u.Scheme, ErrInvalidParameter)
	}
	if u.Host == "" {
		return fmt.Errorf("redirect URL %s has no host: %w", redirectUrl, ErrInvalidParameter)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("redirect URL %s must not have a query or fragment: %w", redirectUrl, ErrInvalidParameter)
	}
	return nil
}

// HttpClient is a helper function that creates a new http client for the
// provider configured.  Every request made with the client is bounded by the
// timeout (see sdk/http.DefaultTimeout when timeout <= 0).
func (c *Config) HttpClient(timeout time.Duration) (*http.Client, error) {
	const op = "Config.HttpClient"
	client, err := sdkHttp.NewClient(c.ProviderCA, timeout)
	if err != nil {
		if errors.Is(err, sdkHttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value successfully: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

// configOptions is the set of available options for Config functions
type configOptions struct {
	withSource     Source
	withScopes     []string
	withProviderCA string
}

// configDefaults is a handy way to get the defaults at runtime and
// during unit tests.
func configDefaults() configOptions {
	return configOptions{
		withSource: SourceDatabase,
	}
}

// getConfigOpts gets the defaults and applies the opt overrides passed
// in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithSource records where the credentials were read from.
func WithSource(s Source) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withSource = s
		}
	}
}

// WithScopes provides an optional list of scopes for the provider's config
func WithScopes(scopes []string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withScopes = scopes
		}
	}
}

// WithProviderCA provides an optional CA cert for the provider's config
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
	}
}
