package entra

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	type args struct {
		clientId     string
		clientSecret ClientSecret
		tenantId     string
		redirectUrl  string
		opt          []Option
	}
	tests := []struct {
		name            string
		args            args
		want            *Config
		wantErr         bool
		wantIsErr       error
		wantErrContains []string
	}{
		{
			name: "valid-defaults",
			args: args{
				clientId:     "client-id",
				clientSecret: "client-secret",
				tenantId:     "tenant",
				redirectUrl:  "https://example.com/cb",
			},
			want: &Config{
				ClientId:     "client-id",
				ClientSecret: "client-secret",
				TenantId:     "tenant",
				RedirectUrl:  "https://example.com/cb",
				Source:       SourceDatabase,
				Scopes:       []string{"User.Read"},
			},
		},
		{
			name: "valid-with-options",
			args: args{
				clientId:     "client-id",
				clientSecret: "client-secret",
				tenantId:     "organizations",
				redirectUrl:  "http://localhost:8080/",
				opt: []Option{
					WithSource(SourceEnvironment),
					WithScopes([]string{"User.Read", "email"}),
					WithProviderCA("ca"),
				},
			},
			want: &Config{
				ClientId:     "client-id",
				ClientSecret: "client-secret",
				TenantId:     "organizations",
				RedirectUrl:  "http://localhost:8080/",
				Source:       SourceEnvironment,
				Scopes:       []string{"User.Read", "email"},
				ProviderCA:   "ca",
			},
		},
		{
			name:            "all-missing",
			args:            args{},
			wantErr:         true,
			wantIsErr:       ErrMissingConfig,
			wantErrContains: []string{"client id is empty", "client secret is empty", "tenant id is empty", "redirect URL is empty"},
		},
		{
			name: "missing-secret",
			args: args{
				clientId:    "client-id",
				tenantId:    "tenant",
				redirectUrl: "https://example.com/cb",
			},
			wantErr:         true,
			wantIsErr:       ErrMissingConfig,
			wantErrContains: []string{"client secret is empty"},
		},
		{
			name: "relative-redirect",
			args: args{
				clientId:     "client-id",
				clientSecret: "client-secret",
				tenantId:     "tenant",
				redirectUrl:  "/cb",
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "redirect-with-query",
			args: args{
				clientId:     "client-id",
				clientSecret: "client-secret",
				tenantId:     "tenant",
				redirectUrl:  "https://example.com/cb?x=1",
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "unknown-source",
			args: args{
				clientId:     "client-id",
				clientSecret: "client-secret",
				tenantId:     "tenant",
				redirectUrl:  "https://example.com/cb",
				opt:          []Option{WithSource("keyvault")},
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			got, err := NewConfig(tt.args.clientId, tt.args.clientSecret, tt.args.tenantId, tt.args.redirectUrl, tt.args.opt...)
			if tt.wantErr {
				require.Error(err)
				assert.Nil(got)
				assert.ErrorIs(err, ErrInvalidConfig)
				if tt.wantIsErr != nil {
					assert.ErrorIs(err, tt.wantIsErr)
				}
				for _, s := range tt.wantErrContains {
					assert.Contains(err.Error(), s)
				}
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	var c *Config
	assert.ErrorIs(t, c.Validate(), ErrNilParameter)
}

func TestClientSecret_Redacted(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	const secret = ClientSecret("super-secret")
	assert.Equal(RedactedClientSecret, secret.String())
	assert.Equal(RedactedClientSecret, fmt.Sprintf("%s", secret))

	c := &Config{ClientId: "id", ClientSecret: secret}
	b, err := json.Marshal(c)
	require.NoError(err)
	assert.NotContains(string(b), "super-secret")
	assert.Contains(string(b), RedactedClientSecret)
}

func TestConfig_HttpClient(t *testing.T) {
	t.Parallel()
	p := StartTestProvider(t)
	t.Run("with-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c := p.Config("https://example.com/cb")
		client, err := c.HttpClient(2 * time.Second)
		require.NoError(err)
		assert.Equal(2*time.Second, client.Timeout)
		resp, err := client.Get(p.Addr() + "/missing")
		require.NoError(err)
		defer resp.Body.Close()
	})
	t.Run("bad-ca", func(t *testing.T) {
		assert := assert.New(t)
		c := &Config{ProviderCA: "not a pem"}
		client, err := c.HttpClient(0)
		assert.Nil(client)
		assert.ErrorIs(err, ErrInvalidCACert)
	})
}
