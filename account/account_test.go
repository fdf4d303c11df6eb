package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{name: "lower", email: "alice@example.com", want: "alice@example.com"},
		{name: "upper", email: "Alice@Example.COM", want: "alice@example.com"},
		{name: "spaces", email: "  bob@example.com\t", want: "bob@example.com"},
		{name: "non-ascii", email: "ÀLICE@Example.com", want: "àlice@example.com"},
		{name: "empty", email: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEmail(tt.email))
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	t.Run("add-lookup", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := NewMemoryStore()
		added, err := s.Add(ctx, Account{Email: "Alice@Example.com", DisplayName: "Alice"})
		require.NoError(err)
		assert.NotEmpty(added.ID)
		assert.False(added.CreatedAt.IsZero())

		got, err := s.LookupByEmail(ctx, "alice@example.COM")
		require.NoError(err)
		assert.Equal(added, got)
	})
	t.Run("duplicate", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := NewMemoryStore()
		_, err := s.Add(ctx, Account{Email: "alice@example.com"})
		require.NoError(err)
		_, err = s.Add(ctx, Account{Email: "ALICE@example.com"})
		assert.ErrorIs(err, ErrAlreadyExists)
	})
	t.Run("not-found", func(t *testing.T) {
		assert := assert.New(t)
		s := NewMemoryStore()
		got, err := s.LookupByEmail(ctx, "nobody@example.com")
		assert.Nil(got)
		assert.ErrorIs(err, ErrNotFound)
	})
	t.Run("invalid", func(t *testing.T) {
		assert := assert.New(t)
		s := NewMemoryStore()
		_, err := s.Add(ctx, Account{})
		assert.ErrorIs(err, ErrInvalidParameter)
		_, err = s.LookupByEmail(ctx, "")
		assert.ErrorIs(err, ErrInvalidParameter)
	})
}
