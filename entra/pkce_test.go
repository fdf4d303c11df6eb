package entra

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var verifierAlphabet = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestNewCodeVerifier(t *testing.T) {
	t.Run("basics", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := NewCodeVerifier()
		require.NoError(err)
		assert.Equal(verifierLen, len(got.Verifier()))
		assert.Equal(S256, got.Method())

		challenge, err := CreateCodeChallenge(S256, got.Verifier())
		require.NoError(err)
		assert.Equal(challenge, got.Challenge())
	})
	t.Run("length-alphabet-padding", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		for i := 0; i < 50; i++ {
			got, err := NewCodeVerifier()
			require.NoError(err)
			v := got.Verifier()
			assert.GreaterOrEqual(len(v), 43)
			assert.LessOrEqual(len(v), 128)
			assert.Regexp(verifierAlphabet, v)
			assert.NotContains(v, "=")
			assert.NotContains(got.Challenge(), "=")
		}
	})
	t.Run("unique", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		seen := map[string]struct{}{}
		for i := 0; i < 100; i++ {
			got, err := NewCodeVerifier()
			require.NoError(err)
			_, dup := seen[got.Verifier()]
			assert.False(dup)
			seen[got.Verifier()] = struct{}{}
		}
	})
}

func TestCreateCodeChallenge(t *testing.T) {
	calcHash := func(data []byte) string {
		h := sha256.New()
		_, _ = h.Write(data)
		sum := h.Sum(nil)
		return base64.RawURLEncoding.EncodeToString(sum)
	}
	t.Run("basics", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		v, err := NewCodeVerifier()
		require.NoError(err)
		challenge, err := CreateCodeChallenge(S256, v.Verifier())
		require.NoError(err)
		assert.Equal(calcHash([]byte(v.Verifier())), challenge)
		assert.Equal(oauth2.S256ChallengeFromVerifier(v.Verifier()), challenge)
	})
	t.Run("deterministic", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		v := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
		first, err := CreateCodeChallenge(S256, v)
		require.NoError(err)
		second, err := CreateCodeChallenge(S256, v)
		require.NoError(err)
		assert.Equal(first, second)
		// RFC 7636 appendix B
		assert.Equal("E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", first)
	})
	t.Run("invalid-method", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		v, err := NewCodeVerifier()
		require.NoError(err)
		challenge, err := CreateCodeChallenge(ChallengeMethod("plain"), v.Verifier())
		require.Error(err)
		assert.Empty(challenge)
		assert.True(errors.Is(err, ErrUnsupportedChallengeMethod))
	})
	t.Run("empty-verifier", func(t *testing.T) {
		assert := assert.New(t)
		challenge, err := CreateCodeChallenge(S256, "")
		assert.Empty(challenge)
		assert.ErrorIs(err, ErrInvalidParameter)
	})
}
