package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoreBehavior exercises the Store contract against s.  Store
// implementations call it from their own tests.
func TestStoreBehavior(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("set-get-take", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		require.NoError(s.Create(ctx, "s1", time.Now().Add(time.Hour)))
		ok, err := s.Exists(ctx, "s1")
		require.NoError(err)
		assert.True(ok)

		require.NoError(s.Set(ctx, "s1", "k", "v1"))
		require.NoError(s.Set(ctx, "s1", "k", "v2"))
		got, err := s.Get(ctx, "s1", "k")
		require.NoError(err)
		assert.Equal("v2", got)

		got, err = s.Take(ctx, "s1", "k")
		require.NoError(err)
		assert.Equal("v2", got)

		_, err = s.Take(ctx, "s1", "k")
		assert.True(errors.Is(err, ErrNotFound))
		_, err = s.Get(ctx, "s1", "k")
		assert.True(errors.Is(err, ErrNotFound))
	})
	t.Run("missing-session", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		ok, err := s.Exists(ctx, "missing")
		require.NoError(err)
		assert.False(ok)
		assert.ErrorIs(s.Set(ctx, "missing", "k", "v"), ErrNotFound)
		_, err = s.Get(ctx, "missing", "k")
		assert.ErrorIs(err, ErrNotFound)
		_, err = s.Take(ctx, "missing", "k")
		assert.ErrorIs(err, ErrNotFound)
		assert.NoError(s.Destroy(ctx, "missing"))
	})
	t.Run("expired", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		require.NoError(s.Create(ctx, "s-expired", time.Now().Add(-time.Second)))
		ok, err := s.Exists(ctx, "s-expired")
		require.NoError(err)
		assert.False(ok)
		assert.ErrorIs(s.Set(ctx, "s-expired", "k", "v"), ErrNotFound)
		_, err = s.Take(ctx, "s-expired", "k")
		assert.ErrorIs(err, ErrNotFound)
	})
	t.Run("destroy", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		require.NoError(s.Create(ctx, "s-destroy", time.Now().Add(time.Hour)))
		require.NoError(s.Set(ctx, "s-destroy", "k", "v"))
		require.NoError(s.Destroy(ctx, "s-destroy"))
		ok, err := s.Exists(ctx, "s-destroy")
		require.NoError(err)
		assert.False(ok)
		_, err = s.Get(ctx, "s-destroy", "k")
		assert.ErrorIs(err, ErrNotFound)
	})
	t.Run("concurrent-take", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		require.NoError(s.Create(ctx, "s-race", time.Now().Add(time.Hour)))
		require.NoError(s.Set(ctx, "s-race", "k", "once"))

		const workers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Take(ctx, "s-race", "k"); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(1, wins)
	})
}
