package entra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// DefaultProfileURL is the Microsoft Graph resource used to identify the
// signed in user.
const DefaultProfileURL = "https://graph.microsoft.com/v1.0/me"

// maxResponseBytes bounds how much of a token or profile reply is read.
const maxResponseBytes = 1 << 20

// Provider drives the authorization code flow with PKCE against a single
// Entra ID tenant.  A Provider is built from the Config loaded for the
// current request and holds no per-login state, so it's safe for concurrent
// use.
type Provider struct {
	config       *Config
	client       *http.Client
	oauth2Config oauth2.Config
	profileURL   string
	upnFallback  bool
	logger       hclog.Logger
}

// NewProvider creates and initializes a Provider for the tenant in the
// config.
//
// Supported options:
//
//	WithLogger
//	WithHTTPClient
//	WithTimeout
//	WithAuthorityHost
//	WithProfileURL
//	WithUPNFallback
func NewProvider(c *Config, opt ...Option) (*Provider, error) {
	const op = "NewProvider"
	if c == nil {
		return nil, fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: provider config is invalid: %w", op, err)
	}
	opts := getProviderOpts(opt...)

	client := opts.withHTTPClient
	if client == nil {
		var err error
		if client, err = c.HttpClient(opts.withTimeout); err != nil {
			return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
		}
	}

	endpoint := microsoft.AzureADEndpoint(c.TenantId)
	if opts.withAuthorityHost != "" {
		base := strings.TrimSuffix(opts.withAuthorityHost, "/") + "/" + url.PathEscape(c.TenantId) + "/oauth2/v2.0"
		endpoint = oauth2.Endpoint{
			AuthURL:  base + "/authorize",
			TokenURL: base + "/token",
		}
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &Provider{
		config: c,
		client: client,
		oauth2Config: oauth2.Config{
			ClientID:     c.ClientId,
			ClientSecret: string(c.ClientSecret),
			Endpoint:     endpoint,
			RedirectURL:  c.RedirectUrl,
			Scopes:       scopes,
		},
		profileURL:  opts.withProfileURL,
		upnFallback: opts.withUPNFallback,
		logger:      opts.withLogger,
	}, nil
}

// Config returns the provider's config.
func (p *Provider) Config() *Config { return p.config }

// AuthURL returns the tenant's authorize URL for the PKCE challenge and
// state.  The code verifier itself is never part of the URL; callers must
// store it in the session before redirecting the user agent.
//
// See: https://learn.microsoft.com/en-us/entra/identity-platform/v2-oauth2-auth-code-flow#request-an-authorization-code
func (p *Provider) AuthURL(challenge, state string) (string, error) {
	const op = "Provider.AuthURL"
	if challenge == "" {
		return "", fmt.Errorf("%s: code challenge is empty: %w", op, ErrInvalidParameter)
	}
	if state == "" {
		return "", fmt.Errorf("%s: state is empty: %w", op, ErrInvalidParameter)
	}
	return p.oauth2Config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("approval_prompt", "auto"),
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", string(S256)),
	), nil
}

// Exchange redeems the authorization code and the PKCE verifier for an
// access token.  Failures to reach the token endpoint or to read its reply
// are ErrTransport; an error reported by Entra ID is a *ProviderError.
// Exchange never retries.
func (p *Provider) Exchange(ctx context.Context, verifier, code string) (*AuthData, error) {
	const op = "Provider.Exchange"
	switch {
	case verifier == "":
		return nil, fmt.Errorf("%s: code verifier is empty: %w", op, ErrInvalidParameter)
	case code == "":
		return nil, fmt.Errorf("%s: authorization code is empty: %w", op, ErrInvalidParameter)
	}

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {p.oauth2Config.ClientID},
		"redirect_uri":  {p.oauth2Config.RedirectURL},
		"code":          {code},
		"code_verifier": {verifier},
		"client_secret": {p.oauth2Config.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.oauth2Config.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create token request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var data AuthData
	status, err := p.do(req, &data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pe := data.providerError(); pe != nil {
		p.logger.Debug("token endpoint returned an error", "status", status, "error", pe.Code)
		return nil, fmt.Errorf("%s: %w", op, pe)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%s: token endpoint returned status %d: %w", op, status, ErrTransport)
	}
	if data.AccessToken == "" {
		return nil, fmt.Errorf("%s: %w", op, &ProviderError{Code: "invalid_response", Description: "token response is missing an access token"})
	}
	return &data, nil
}

// UserInfo reads the signed in user's profile from Microsoft Graph.  A
// profile without an email address is ErrMissingMail unless the provider
// was created WithUPNFallback and the user principal name is an address.
func (p *Provider) UserInfo(ctx context.Context, token AccessToken) (*UserProfile, error) {
	const op = "Provider.UserInfo"
	if token == "" {
		return nil, fmt.Errorf("%s: access token is empty: %w", op, ErrInvalidParameter)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create profile request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+string(token))
	req.Header.Set("Accept", "application/json")

	var profile UserProfile
	status, err := p.do(req, &profile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pe := profile.providerError(); pe != nil {
		p.logger.Debug("profile endpoint returned an error", "status", status, "error", pe.Code)
		return nil, fmt.Errorf("%s: %w", op, pe)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%s: profile endpoint returned status %d: %w", op, status, ErrTransport)
	}
	email := profile.Email(p.upnFallback)
	if email == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingMail)
	}
	profile.Mail = email
	return &profile, nil
}

// do sends the request and decodes a JSON reply into out.  Every failure
// returned wraps ErrTransport.
func (p *Provider) do(req *http.Request, out interface{}) (int, error) {
	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("request failed", "url", req.URL.Redacted(), "elapsed", time.Since(start), "error", err)
		return 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: unable to read response: %w", ErrTransport, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: unable to decode response (status %d): %w", ErrTransport, resp.StatusCode, err)
	}
	p.logger.Trace("request complete", "url", req.URL.Redacted(), "status", resp.StatusCode, "elapsed", time.Since(start))
	return resp.StatusCode, nil
}

// providerOptions is the set of available options for Provider functions
type providerOptions struct {
	withLogger        hclog.Logger
	withHTTPClient    *http.Client
	withTimeout       time.Duration
	withAuthorityHost string
	withProfileURL    string
	withUPNFallback   bool
}

// providerDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func providerDefaults() providerOptions {
	return providerOptions{
		withLogger:     hclog.NewNullLogger(),
		withProfileURL: DefaultProfileURL,
	}
}

// getProviderOpts gets the provider defaults and applies the opt overrides
// passed in
func getProviderOpts(opt ...Option) providerOptions {
	opts := providerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger for the provider.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithHTTPClient provides the http client used for the token and profile
// requests.  It takes precedence over WithTimeout and the config's
// ProviderCA.
func WithHTTPClient(c *http.Client) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok {
			o.withHTTPClient = c
		}
	}
}

// WithTimeout bounds every outbound request.
func WithTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok {
			o.withTimeout = d
		}
	}
}

// WithAuthorityHost replaces https://login.microsoftonline.com (sovereign
// clouds, tests).
func WithAuthorityHost(host string) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok {
			o.withAuthorityHost = host
		}
	}
}

// WithProfileURL replaces DefaultProfileURL.
func WithProfileURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok && u != "" {
			o.withProfileURL = u
		}
	}
}

// WithUPNFallback allows the user principal name to stand in for a missing
// mail attribute.
func WithUPNFallback() Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok {
			o.withUPNFallback = true
		}
	}
}
