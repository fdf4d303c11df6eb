package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/sabithahmd/Wordpress-Azure-Login/entra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("disk on fire") }

func TestLoader_Read(t *testing.T) {
	ctx := context.Background()
	dbValues := map[string]string{
		KeyClientId:     "db-client",
		KeyClientSecret: "db-secret",
		KeyTenantId:     "db-tenant",
		KeyRedirectUrl:  "https://example.com/cb",
	}
	environment := map[string]string{
		"LOGINWIAZ_CLIENT_ID":     "env-client",
		"LOGINWIAZ_CLIENT_SECRET": "env-secret",
		"LOGINWIAZ_TENANT_ID":     "env-tenant",
	}
	with := func(extra map[string]string) map[string]string {
		out := map[string]string{}
		for k, v := range dbValues {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	tests := []struct {
		name        string
		values      map[string]string
		environment map[string]string
		want        *entra.Config
		wantIsErr   error
	}{
		{
			name:        "database-default",
			values:      dbValues,
			environment: environment,
			want: &entra.Config{
				ClientId:     "db-client",
				ClientSecret: "db-secret",
				TenantId:     "db-tenant",
				RedirectUrl:  "https://example.com/cb",
				Source:       entra.SourceDatabase,
				Scopes:       []string{"User.Read"},
			},
		},
		{
			name:        "environment",
			values:      with(map[string]string{KeyCredStorage: "environment"}),
			environment: environment,
			want: &entra.Config{
				ClientId:     "env-client",
				ClientSecret: "env-secret",
				TenantId:     "env-tenant",
				RedirectUrl:  "https://example.com/cb",
				Source:       entra.SourceEnvironment,
				Scopes:       []string{"User.Read"},
			},
		},
		{
			name:        "environment-missing-vars",
			values:      with(map[string]string{KeyCredStorage: "environment"}),
			environment: map[string]string{"LOGINWIAZ_CLIENT_ID": "env-client"},
			wantIsErr:   entra.ErrMissingConfig,
		},
		{
			name:      "nothing-configured",
			values:    map[string]string{},
			wantIsErr: entra.ErrMissingConfig,
		},
		{
			name:      "unknown-source",
			values:    with(map[string]string{KeyCredStorage: "vault"}),
			wantIsErr: entra.ErrInvalidConfig,
		},
		{
			name:      "missing-redirect",
			values:    with(map[string]string{KeyRedirectUrl: ""}),
			wantIsErr: entra.ErrMissingConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			env := tt.environment
			if env == nil {
				env = map[string]string{}
			}
			l, err := NewLoader(NewMemoryStore(tt.values), WithEnvironment(env))
			require.NoError(err)
			got, err := l.Read(ctx)
			if tt.wantIsErr != nil {
				assert.Nil(got)
				assert.ErrorIs(err, tt.wantIsErr)
				assert.ErrorIs(err, entra.ErrInvalidConfig)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}

	t.Run("store-error", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		l, err := NewLoader(failingStore{})
		require.NoError(err)
		_, err = l.Read(ctx)
		assert.ErrorContains(err, "disk on fire")
	})
}

func TestLoader_PasswordLoginDisabled(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		value map[string]string
		want  bool
	}{
		{name: "unset", value: map[string]string{}, want: false},
		{name: "yes", value: map[string]string{KeyDisablePasswordLogin: "yes"}, want: true},
		{name: "no", value: map[string]string{KeyDisablePasswordLogin: "no"}, want: false},
		{name: "other", value: map[string]string{KeyDisablePasswordLogin: "true"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			l, err := NewLoader(NewMemoryStore(tt.value))
			require.NoError(err)
			got, err := l.PasswordLoginDisabled(ctx)
			require.NoError(err)
			assert.Equal(tt.want, got)

			s, err := l.Load(ctx)
			require.NoError(err)
			assert.Equal(tt.want, s.DisablePasswordLogin)
		})
	}
}

func TestNewLoader(t *testing.T) {
	_, err := NewLoader(nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestIsKnownKey(t *testing.T) {
	assert := assert.New(t)
	for _, k := range Keys {
		assert.True(IsKnownKey(k))
	}
	assert.False(IsKnownKey("siteurl"))
}
