package entra

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"encoding/pem"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestTenantId is the tenant served by a TestProvider.
const TestTenantId = "test-tenant"

// TestProvider is a local TLS server that stands in for the Entra ID
// authorize and token endpoints and the Microsoft Graph profile endpoint,
// which makes writing tests of the whole login flow much easier.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string

	mu                  sync.Mutex
	clientID            string
	clientSecret        string
	expectedAuthCode    string
	allowedRedirectURIs []string
	challenges          map[string]string
	accessToken         string
	tokenErrCode        string
	tokenErrDesc        string
	tokenErrStatus      int
	tokenRawReply       string
	tokenDelay          time.Duration
	tokenRequests       int
	replyMail           string
	replyUPN            string
	replyDisplayName    string
	profileErrCode      string
	profileErrMsg       string

	t *testing.T
}

// StartTestProvider creates a disposable TestProvider.  It's stopped when the
// test completes.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	require := require.New(t)

	p := &TestProvider{
		clientID:            "test-client-id",
		clientSecret:        "test-client-secret",
		expectedAuthCode:    "test-auth-code",
		allowedRedirectURIs: []string{"https://example.com/cb"},
		challenges:          map[string]string{},
		accessToken:         "test-access-token",
		replyMail:           "alice@example.com",
		replyUPN:            "alice@example.com",
		replyDisplayName:    "Alice",
		t:                   t,
	}

	p.httpServer = httptest.NewUnstartedServer(p)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	var buf bytes.Buffer
	err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: p.httpServer.Certificate().Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// SetClientCreds configures the client credentials the token endpoint
// accepts.
func (p *TestProvider) SetClientCreds(clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientID = clientID
	p.clientSecret = clientSecret
}

// ClientCreds returns the client credentials the token endpoint accepts.
func (p *TestProvider) ClientCreds() (clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clientID, p.clientSecret
}

// SetExpectedAuthCode configures the code returned from the authorize
// endpoint and the only code the token endpoint redeems.
func (p *TestProvider) SetExpectedAuthCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedAuthCode = code
}

// SetAllowedRedirectURIs configures the registered redirect URIs.  If not
// configured "https://example.com/cb" is used.
func (p *TestProvider) SetAllowedRedirectURIs(uris []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allowedRedirectURIs = uris
}

// SetCodeChallenge registers the PKCE challenge for an authorization code as
// if the authorize endpoint had been visited.
func (p *TestProvider) SetCodeChallenge(code, challenge string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.challenges[code] = challenge
}

// SetTokenError makes the token endpoint reply with an oauth error.  A
// status of http.StatusOK sends the error in a successful response.
func (p *TestProvider) SetTokenError(status int, code, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if status == 0 {
		status = http.StatusBadRequest
	}
	p.tokenErrStatus = status
	p.tokenErrCode = code
	p.tokenErrDesc = description
}

// SetTokenRawReply makes the token endpoint reply with body as is.
func (p *TestProvider) SetTokenRawReply(body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenRawReply = body
}

// SetTokenDelay delays every token endpoint reply.
func (p *TestProvider) SetTokenDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenDelay = d
}

// TokenRequests returns the number of token requests served.
func (p *TestProvider) TokenRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenRequests
}

// SetUserProfile configures the profile returned by the Graph endpoint.  An
// empty mail omits the attribute.
func (p *TestProvider) SetUserProfile(mail, upn, displayName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replyMail = mail
	p.replyUPN = upn
	p.replyDisplayName = displayName
}

// SetProfileError makes the Graph endpoint reply with a Graph error object.
func (p *TestProvider) SetProfileError(code, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profileErrCode = code
	p.profileErrMsg = message
}

// AccessToken returns the access token the token endpoint issues.
func (p *TestProvider) AccessToken() AccessToken {
	p.mu.Lock()
	defer p.mu.Unlock()
	return AccessToken(p.accessToken)
}

// Addr returns the current base URL for the test provider's running webserver.
// Use it with WithAuthorityHost.
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// ProfileURL returns the profile endpoint.  Use it with WithProfileURL.
func (p *TestProvider) ProfileURL() string { return p.httpServer.URL + "/v1.0/me" }

// Tenant returns the tenant served.
func (p *TestProvider) Tenant() string { return TestTenantId }

// CACert returns the pem-encoded CA certificate used by the test provider's
// HTTPS server.
func (p *TestProvider) CACert() string { return p.caCert }

// HTTPClient returns a client which trusts the test provider.
func (p *TestProvider) HTTPClient() *http.Client { return p.httpServer.Client() }

// ProviderOptions returns the options needed for a Provider to talk to the
// test provider.
func (p *TestProvider) ProviderOptions() []Option {
	return []Option{
		WithAuthorityHost(p.Addr()),
		WithProfileURL(p.ProfileURL()),
		WithHTTPClient(p.HTTPClient()),
	}
}

// Config returns a valid Config for the test provider with the redirect URL
// given.
func (p *TestProvider) Config(redirectURL string) *Config {
	p.t.Helper()
	clientID, clientSecret := p.ClientCreds()
	c, err := NewConfig(clientID, ClientSecret(clientSecret), TestTenantId, redirectURL, WithProviderCA(p.caCert))
	require.NoError(p.t, err)
	return c
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, status int, out interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}

func (p *TestProvider) writeAuthErrorResponse(w http.ResponseWriter, req *http.Request, errorCode, errorMessage string) {
	qv := req.URL.Query()
	v := url.Values{
		"state": {qv.Get("state")},
		"error": {errorCode},
	}
	if errorMessage != "" {
		v.Set("error_description", errorMessage)
	}
	http.Redirect(w, req, qv.Get("redirect_uri")+"?"+v.Encode(), http.StatusFound)
}

func (p *TestProvider) writeTokenErrorResponse(w http.ResponseWriter, statusCode int, errorCode, errorMessage string) {
	body := struct {
		Code string `json:"error"`
		Desc string `json:"error_description,omitempty"`
	}{
		Code: errorCode,
		Desc: errorMessage,
	}
	p.writeJSON(w, statusCode, &body)
}

func (p *TestProvider) redirectAllowed(uri string) bool {
	for _, u := range p.allowedRedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	tenantPrefix := "/" + TestTenantId + "/oauth2/v2.0"

	switch req.URL.Path {
	case tenantPrefix + "/authorize":
		p.serveAuthorize(w, req)
	case tenantPrefix + "/token":
		p.serveToken(w, req)
	case "/v1.0/me":
		p.serveProfile(w, req)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *TestProvider) serveAuthorize(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	qv := req.URL.Query()
	switch {
	case !p.redirectAllowed(qv.Get("redirect_uri")):
		// Entra ID renders an error page rather than redirecting to an
		// unregistered URI.
		w.WriteHeader(http.StatusBadRequest)
		return
	case qv.Get("response_type") != "code":
		p.writeAuthErrorResponse(w, req, "unsupported_response_type", "")
		return
	case qv.Get("client_id") != p.clientID:
		p.writeAuthErrorResponse(w, req, "unauthorized_client", "unknown client_id")
		return
	case qv.Get("code_challenge_method") != string(S256) || qv.Get("code_challenge") == "":
		p.writeAuthErrorResponse(w, req, "invalid_request", "PKCE S256 code challenge required")
		return
	case qv.Has("code_verifier"):
		p.writeAuthErrorResponse(w, req, "invalid_request", "code_verifier must not be sent to the authorize endpoint")
		return
	case qv.Get("state") == "":
		p.writeAuthErrorResponse(w, req, "invalid_request", "missing state parameter")
		return
	case p.expectedAuthCode == "":
		p.writeAuthErrorResponse(w, req, "access_denied", "")
		return
	}
	p.challenges[p.expectedAuthCode] = qv.Get("code_challenge")

	v := url.Values{
		"code":  {p.expectedAuthCode},
		"state": {qv.Get("state")},
	}
	http.Redirect(w, req, qv.Get("redirect_uri")+"?"+v.Encode(), http.StatusFound)
}

func (p *TestProvider) serveToken(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	delay := p.tokenDelay
	p.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-req.Context().Done():
			return
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenRequests++

	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if p.tokenRawReply != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, p.tokenRawReply)
		return
	}
	if p.tokenErrCode != "" {
		p.writeTokenErrorResponse(w, p.tokenErrStatus, p.tokenErrCode, p.tokenErrDesc)
		return
	}

	code := req.FormValue("code")
	challenge, err := CreateCodeChallenge(S256, req.FormValue("code_verifier"))
	switch {
	case req.FormValue("grant_type") != "authorization_code":
		p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "bad grant_type")
		return
	case req.FormValue("client_id") != p.clientID ||
		subtle.ConstantTimeCompare([]byte(req.FormValue("client_secret")), []byte(p.clientSecret)) != 1:
		p.writeTokenErrorResponse(w, http.StatusUnauthorized, "invalid_client", "invalid client credentials")
		return
	case !p.redirectAllowed(req.FormValue("redirect_uri")):
		p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "redirect_uri is not allowed")
		return
	case code == "" || code != p.expectedAuthCode:
		p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_grant", "unexpected auth code")
		return
	case err != nil:
		p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing code_verifier")
		return
	case p.challenges[code] != "" && p.challenges[code] != challenge:
		p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_grant", "code_verifier does not match the code challenge")
		return
	}

	reply := struct {
		TokenType   string `json:"token_type"`
		Scope       string `json:"scope"`
		ExpiresIn   int64  `json:"expires_in"`
		AccessToken string `json:"access_token"`
	}{
		TokenType:   "Bearer",
		Scope:       strings.Join(DefaultScopes, " "),
		ExpiresIn:   3599,
		AccessToken: p.accessToken,
	}
	p.writeJSON(w, http.StatusOK, &reply)
}

func (p *TestProvider) serveProfile(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	graphErr := func(status int, code, message string) {
		p.writeJSON(w, status, map[string]interface{}{
			"error": map[string]string{"code": code, "message": message},
		})
	}
	if req.Header.Get("Authorization") != "Bearer "+p.accessToken {
		graphErr(http.StatusUnauthorized, "InvalidAuthenticationToken", "Access token is empty or invalid.")
		return
	}
	if p.profileErrCode != "" {
		graphErr(http.StatusForbidden, p.profileErrCode, p.profileErrMsg)
		return
	}
	reply := map[string]interface{}{
		"id":                "00000000-0000-0000-0000-000000000001",
		"displayName":       p.replyDisplayName,
		"userPrincipalName": p.replyUPN,
	}
	if p.replyMail != "" {
		reply["mail"] = p.replyMail
	} else {
		reply["mail"] = nil
	}
	p.writeJSON(w, http.StatusOK, reply)
}
