package entra

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedirect = "https://example.com/cb"

func testProvider(t *testing.T, tp *TestProvider, opt ...Option) *Provider {
	t.Helper()
	p, err := NewProvider(tp.Config(testRedirect), append(tp.ProviderOptions(), opt...)...)
	require.NoError(t, err)
	return p
}

func TestNewProvider(t *testing.T) {
	t.Parallel()
	t.Run("nil-config", func(t *testing.T) {
		assert := assert.New(t)
		p, err := NewProvider(nil)
		assert.Nil(p)
		assert.ErrorIs(err, ErrNilParameter)
	})
	t.Run("invalid-config", func(t *testing.T) {
		assert := assert.New(t)
		p, err := NewProvider(&Config{Source: SourceDatabase})
		assert.Nil(p)
		assert.ErrorIs(err, ErrMissingConfig)
	})
	t.Run("bad-ca", func(t *testing.T) {
		assert := assert.New(t)
		c := &Config{
			ClientId:     "id",
			ClientSecret: "secret",
			TenantId:     "tenant",
			RedirectUrl:  testRedirect,
			Source:       SourceDatabase,
			ProviderCA:   "bad",
		}
		p, err := NewProvider(c)
		assert.Nil(p)
		assert.ErrorIs(err, ErrInvalidCACert)
	})
}

func TestProvider_AuthURL(t *testing.T) {
	t.Parallel()
	c, err := NewConfig("client-id", "client-secret", "tenant-abc", testRedirect)
	require.NoError(t, err)

	t.Run("entra-endpoint", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		p, err := NewProvider(c)
		require.NoError(err)
		v, err := NewCodeVerifier()
		require.NoError(err)

		got, err := p.AuthURL(v.Challenge(), "sess_state")
		require.NoError(err)
		u, err := url.Parse(got)
		require.NoError(err)
		assert.Equal("https", u.Scheme)
		assert.Equal("login.microsoftonline.com", u.Host)
		assert.Equal("/tenant-abc/oauth2/v2.0/authorize", u.Path)

		q := u.Query()
		assert.Equal("sess_state", q.Get("state"))
		assert.Equal("User.Read", q.Get("scope"))
		assert.Equal("code", q.Get("response_type"))
		assert.Equal("auto", q.Get("approval_prompt"))
		assert.Equal("client-id", q.Get("client_id"))
		assert.Equal(testRedirect, q.Get("redirect_uri"))
		assert.Equal(v.Challenge(), q.Get("code_challenge"))
		assert.Equal("S256", q.Get("code_challenge_method"))
		assert.False(q.Has("code_verifier"))
		assert.NotContains(got, v.Verifier())
		assert.NotContains(got, "client-secret")
	})
	t.Run("authority-host", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		p, err := NewProvider(c, WithAuthorityHost("https://login.microsoftonline.us/"))
		require.NoError(err)
		got, err := p.AuthURL("challenge", "state")
		require.NoError(err)
		assert.True(strings.HasPrefix(got, "https://login.microsoftonline.us/tenant-abc/oauth2/v2.0/authorize?"))
	})
	t.Run("missing-params", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		p, err := NewProvider(c)
		require.NoError(err)
		_, err = p.AuthURL("", "state")
		assert.ErrorIs(err, ErrInvalidParameter)
		_, err = p.AuthURL("challenge", "")
		assert.ErrorIs(err, ErrInvalidParameter)
	})
}

func TestProvider_Exchange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tp := StartTestProvider(t)
		p := testProvider(t, tp)
		v, err := NewCodeVerifier()
		require.NoError(err)
		tp.SetCodeChallenge("test-auth-code", v.Challenge())

		got, err := p.Exchange(ctx, v.Verifier(), "test-auth-code")
		require.NoError(err)
		assert.Equal(tp.AccessToken(), got.AccessToken)
		assert.Equal("Bearer", got.TokenType)
		assert.Equal(int64(3599), got.ExpiresIn)
		assert.Equal(1, tp.TokenRequests())
	})
	t.Run("verifier-mismatch", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tp := StartTestProvider(t)
		p := testProvider(t, tp)
		v, err := NewCodeVerifier()
		require.NoError(err)
		tp.SetCodeChallenge("test-auth-code", v.Challenge())
		other, err := NewCodeVerifier()
		require.NoError(err)

		got, err := p.Exchange(ctx, other.Verifier(), "test-auth-code")
		assert.Nil(got)
		var pe *ProviderError
		require.True(errors.As(err, &pe))
		assert.Equal("invalid_grant", pe.Code)
	})
	t.Run("expired-code", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tp := StartTestProvider(t)
		tp.SetTokenError(http.StatusBadRequest, "invalid_grant", "expired code")
		p := testProvider(t, tp)

		got, err := p.Exchange(ctx, "verifier", "test-auth-code")
		assert.Nil(got)
		require.Error(err)
		assert.ErrorIs(err, ErrProviderResponse)
		assert.False(errors.Is(err, ErrTransport))
		var pe *ProviderError
		require.True(errors.As(err, &pe))
		assert.Equal("expired code", pe.Description)
	})
	t.Run("error-in-success-reply", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tp := StartTestProvider(t)
		tp.SetTokenError(http.StatusOK, "invalid_grant", "expired code")
		p := testProvider(t, tp)

		_, err := p.Exchange(ctx, "verifier", "test-auth-code")
		var pe *ProviderError
		require.True(errors.As(err, &pe))
		assert.Equal("expired code", pe.Description)
	})
	t.Run("missing-access-token", func(t *testing.T) {
		assert := assert.New(t)
		tp := StartTestProvider(t)
		tp.SetTokenRawReply(`{"token_type":"Bearer"}`)
		p := testProvider(t, tp)

		got, err := p.Exchange(ctx, "verifier", "test-auth-code")
		assert.Nil(got)
		assert.ErrorIs(err, ErrProviderResponse)
	})
	t.Run("malformed-reply", func(t *testing.T) {
		assert := assert.New(t)
		tp := StartTestProvider(t)
		tp.SetTokenRawReply(`<html>not json</html>`)
		p := testProvider(t, tp)

		got, err := p.Exchange(ctx, "verifier", "test-auth-code")
		assert.Nil(got)
		assert.ErrorIs(err, ErrTransport)
	})
	t.Run("unreachable", func(t *testing.T) {
		assert := assert.New(t)
		tp := StartTestProvider(t)
		p := testProvider(t, tp)
		tp.Stop()

		got, err := p.Exchange(ctx, "verifier", "test-auth-code")
		assert.Nil(got)
		assert.ErrorIs(err, ErrTransport)
	})
	t.Run("timeout", func(t *testing.T) {
		assert := assert.New(t)
		tp := StartTestProvider(t)
		tp.SetTokenDelay(2 * time.Second)
		client := tp.HTTPClient()
		client.Timeout = 50 * time.Millisecond
		p := testProvider(t, tp, WithHTTPClient(client))

		got, err := p.Exchange(ctx, "verifier", "test-auth-code")
		assert.Nil(got)
		assert.ErrorIs(err, ErrTransport)
	})
	t.Run("missing-params", func(t *testing.T) {
		assert := assert.New(t)
		tp := StartTestProvider(t)
		p := testProvider(t, tp)
		_, err := p.Exchange(ctx, "", "code")
		assert.ErrorIs(err, ErrInvalidParameter)
		_, err = p.Exchange(ctx, "verifier", "")
		assert.ErrorIs(err, ErrInvalidParameter)
		assert.Equal(0, tp.TokenRequests())
	})
}

func TestProvider_UserInfo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tp := StartTestProvider(t)
		p := testProvider(t, tp)
		got, err := p.UserInfo(ctx, tp.AccessToken())
		require.NoError(err)
		assert.Equal("alice@example.com", got.Mail)
		assert.Equal("Alice", got.DisplayName)
	})
	t.Run("bad-token", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tp := StartTestProvider(t)
		p := testProvider(t, tp)
		_, err := p.UserInfo(ctx, "wrong")
		var pe *ProviderError
		require.True(errors.As(err, &pe))
		assert.Equal("InvalidAuthenticationToken", pe.Code)
		assert.Equal("Access token is empty or invalid.", pe.Description)
	})
	t.Run("graph-error", func(t *testing.T) {
		assert := assert.New(t)
		tp := StartTestProvider(t)
		tp.SetProfileError("Authorization_RequestDenied", "Insufficient privileges to complete the operation.")
		p := testProvider(t, tp)
		_, err := p.UserInfo(ctx, tp.AccessToken())
		assert.ErrorIs(err, ErrProviderResponse)
		assert.Contains(err.Error(), "Insufficient privileges")
	})
	t.Run("missing-mail", func(t *testing.T) {
		assert := assert.New(t)
		tp := StartTestProvider(t)
		tp.SetUserProfile("", "alice@example.onmicrosoft.com", "Alice")
		p := testProvider(t, tp)
		got, err := p.UserInfo(ctx, tp.AccessToken())
		assert.Nil(got)
		assert.ErrorIs(err, ErrMissingMail)
	})
	t.Run("upn-fallback", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tp := StartTestProvider(t)
		tp.SetUserProfile("", "alice@example.onmicrosoft.com", "Alice")
		p := testProvider(t, tp, WithUPNFallback())
		got, err := p.UserInfo(ctx, tp.AccessToken())
		require.NoError(err)
		assert.Equal("alice@example.onmicrosoft.com", got.Mail)
	})
	t.Run("empty-token", func(t *testing.T) {
		assert := assert.New(t)
		tp := StartTestProvider(t)
		p := testProvider(t, tp)
		_, err := p.UserInfo(ctx, "")
		assert.ErrorIs(err, ErrInvalidParameter)
	})
}

func TestUserProfile_ErrorField(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		json     string
		wantCode string
		wantDesc string
	}{
		{
			name:     "graph-object",
			json:     `{"error":{"code":"Request_ResourceNotFound","message":"gone"}}`,
			wantCode: "Request_ResourceNotFound",
			wantDesc: "gone",
		},
		{
			name:     "oauth-string",
			json:     `{"error":"invalid_token","error_description":"expired"}`,
			wantCode: "invalid_token",
			wantDesc: "expired",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			var p UserProfile
			require.NoError(json.Unmarshal([]byte(tt.json), &p))
			pe := p.providerError()
			require.NotNil(pe)
			assert.Equal(tt.wantCode, pe.Code)
			assert.Equal(tt.wantDesc, pe.Description)
		})
	}
}
