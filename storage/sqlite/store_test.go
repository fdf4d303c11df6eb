package sqlite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sabithahmd/Wordpress-Azure-Login/account"
	"github.com/sabithahmd/Wordpress-Azure-Login/entra"
	"github.com/sabithahmd/Wordpress-Azure-Login/session"
	"github.com/sabithahmd/Wordpress-Azure-Login/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "entra-login.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	t.Run("missing-path", func(t *testing.T) {
		_, err := Open(ctx, "  ")
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
	t.Run("reopen-keeps-data", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		path := filepath.Join(t.TempDir(), "reopen.db")
		db, err := Open(ctx, path)
		require.NoError(err)
		require.NoError(db.Settings().Set(ctx, settings.KeyTenantId, "tenant"))
		require.NoError(db.Close())

		db, err = Open(ctx, path)
		require.NoError(err)
		defer db.Close()
		v, ok, err := db.Settings().Get(ctx, settings.KeyTenantId)
		require.NoError(err)
		assert.True(ok)
		assert.Equal("tenant", v)
	})
}

func TestSettingsStore(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	s := openTestDB(t).Settings()

	_, ok, err := s.Get(ctx, settings.KeyClientId)
	require.NoError(err)
	assert.False(ok)

	require.NoError(s.Set(ctx, settings.KeyClientId, "first"))
	require.NoError(s.Set(ctx, settings.KeyClientId, "second"))
	v, ok, err := s.Get(ctx, settings.KeyClientId)
	require.NoError(err)
	assert.True(ok)
	assert.Equal("second", v)

	require.NoError(s.Delete(ctx, settings.KeyClientId))
	_, ok, err = s.Get(ctx, settings.KeyClientId)
	require.NoError(err)
	assert.False(ok)

	assert.ErrorIs(s.Set(ctx, "", "v"), ErrInvalidParameter)
}

func TestSettingsStore_Loader(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	s := openTestDB(t).Settings()
	for k, v := range map[string]string{
		settings.KeyClientId:     "db-client",
		settings.KeyClientSecret: "db-secret",
		settings.KeyTenantId:     "db-tenant",
		settings.KeyRedirectUrl:  "https://example.com/cb",
	} {
		require.NoError(s.Set(ctx, k, v))
	}
	l, err := settings.NewLoader(s, settings.WithEnvironment(map[string]string{}))
	require.NoError(err)

	c, err := l.Read(ctx)
	require.NoError(err)
	assert.Equal("db-client", c.ClientId)
	assert.Equal(entra.ClientSecret("db-secret"), c.ClientSecret)
	assert.Equal(entra.SourceDatabase, c.Source)

	require.NoError(s.Set(ctx, settings.KeyClientId, ""))
	_, err = l.Read(ctx)
	assert.ErrorIs(err, entra.ErrInvalidConfig)
}

func TestAccountStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestDB(t).Accounts()

	created := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	alice, err := s.Add(ctx, account.Account{Email: " Alice@Example.com ", DisplayName: "Alice", CreatedAt: created})
	require.NoError(t, err)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "Alice@Example.com", alice.Email)
	assert.Equal(t, created.Truncate(time.Millisecond), alice.CreatedAt)

	tests := []struct {
		name      string
		email     string
		wantID    string
		wantIsErr error
	}{
		{name: "exact", email: "Alice@Example.com", wantID: alice.ID},
		{name: "case-folded", email: "ALICE@EXAMPLE.COM", wantID: alice.ID},
		{name: "padded", email: "  alice@example.com\t", wantID: alice.ID},
		{name: "unknown", email: "bob@example.com", wantIsErr: account.ErrNotFound},
		{name: "empty", email: " ", wantIsErr: account.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := s.LookupByEmail(ctx, tt.email)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.Equal(tt.wantID, got.ID)
			assert.Equal("Alice", got.DisplayName)
			assert.Equal(alice.CreatedAt, got.CreatedAt)
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		_, err := s.Add(ctx, account.Account{Email: "alice@EXAMPLE.com"})
		assert.ErrorIs(t, err, account.ErrAlreadyExists)
	})
	t.Run("missing-email", func(t *testing.T) {
		_, err := s.Add(ctx, account.Account{})
		assert.ErrorIs(t, err, account.ErrInvalidParameter)
	})
}

func TestSessionStore(t *testing.T) {
	t.Parallel()
	session.TestStoreBehavior(t, openTestDB(t).Sessions())
}

func TestSessionStore_DeleteExpired(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	db := openTestDB(t)
	s := db.Sessions()

	now := time.Now()
	db.now = func() time.Time { return now }
	require.NoError(s.Create(ctx, "live", now.Add(time.Minute)))
	require.NoError(s.Create(ctx, "dead", now.Add(time.Minute)))
	require.NoError(s.Set(ctx, "dead", "k", "v"))

	db.now = func() time.Time { return now.Add(30 * time.Second) }
	require.NoError(s.Create(ctx, "later", now.Add(5*time.Minute)))

	db.now = func() time.Time { return now.Add(2 * time.Minute) }
	n, err := s.DeleteExpired(ctx)
	require.NoError(err)
	assert.Equal(int64(2), n)

	db.now = func() time.Time { return now }
	ok, err := s.Exists(ctx, "dead")
	require.NoError(err)
	assert.False(ok)
	ok, err = s.Exists(ctx, "later")
	require.NoError(err)
	assert.True(ok)
}

func TestSessionStore_Manager(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	m, err := session.NewManager(openTestDB(t).Sessions(), "entra_login")
	require.NoError(err)

	w := httptest.NewRecorder()
	s, err := m.New(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(err)
	require.NoError(s.Set(ctx, "code_verifier", "abc"))
	v, err := s.Take(ctx, "code_verifier")
	require.NoError(err)
	assert.Equal("abc", v)
	_, err = s.Take(ctx, "code_verifier")
	assert.ErrorIs(err, session.ErrNotFound)
	assert.NotEmpty(w.Result().Cookies())
}
