package entra

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// ChallengeMethod represents PKCE code challenge methods as defined by RFC
// 7636.
type ChallengeMethod string

const (
	// S256 is the only challenge method Entra ID login uses.
	// See: https://datatracker.ietf.org/doc/html/rfc7636#section-4.3
	S256 ChallengeMethod = "S256"
)

// verifierBytes of random data encode to a verifierLen character verifier,
// the maximum RFC 7636 allows.
const (
	verifierBytes = 96
	verifierLen   = 128
)

// CodeVerifier is a PKCE verifier/challenge pair created for one login
// attempt.
type CodeVerifier interface {
	// Verifier returns the code verifier (see:
	// https://tools.ietf.org/html/rfc7636#section-4.1)
	Verifier() string

	// Challenge returns the code verifier's code challenge (see:
	// https://tools.ietf.org/html/rfc7636#section-4.2)
	Challenge() string

	// Method returns the code verifier's challenge method (see
	// https://tools.ietf.org/html/rfc7636#section-4.2)
	Method() ChallengeMethod
}

// S256Verifier represents an OAuth PKCE code verifier that uses the S256
// challenge method.  It implements the CodeVerifier interface.
type S256Verifier struct {
	verifier  string
	challenge string
	method    ChallengeMethod
}

// ensure that S256Verifier implements the CodeVerifier interface
var _ CodeVerifier = (*S256Verifier)(nil)

// NewCodeVerifier creates a new CodeVerifier (*S256Verifier) from 96 bytes
// of crypto/rand data, base64url encoded without padding.
//
// See: https://tools.ietf.org/html/rfc7636#section-4.1
func NewCodeVerifier() (*S256Verifier, error) {
	const op = "NewCodeVerifier"
	data := make([]byte, verifierBytes)
	if _, err := rand.Read(data); err != nil {
		return nil, fmt.Errorf("%s: unable to read random data for verifier: %w", op, err)
	}
	v := &S256Verifier{
		verifier: base64.RawURLEncoding.EncodeToString(data),
		method:   S256,
	}
	c, err := CreateCodeChallenge(S256, v.verifier)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create code challenge: %w", op, err)
	}
	v.challenge = c
	return v, nil
}

func (v *S256Verifier) Verifier() string        { return v.verifier }  // Verifier implements the CodeVerifier.Verifier() interface function.
func (v *S256Verifier) Challenge() string       { return v.challenge } // Challenge implements the CodeVerifier.Challenge() interface function.
func (v *S256Verifier) Method() ChallengeMethod { return v.method }    // Method implements the CodeVerifier.Method() interface function.

// CreateCodeChallenge creates a code challenge from the verifier: the
// base64url (no padding) SHA-256 digest of the verifier's bytes.  Supported
// ChallengeMethods: S256
//
// See: https://datatracker.ietf.org/doc/html/rfc7636#section-4.2
func CreateCodeChallenge(method ChallengeMethod, verifier string) (string, error) {
	const op = "CreateCodeChallenge"
	if method != S256 {
		return "", fmt.Errorf("%s: %s is invalid: %w", op, method, ErrUnsupportedChallengeMethod)
	}
	if verifier == "" {
		return "", fmt.Errorf("%s: verifier is empty: %w", op, ErrInvalidParameter)
	}
	h := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h[:]), nil
}
