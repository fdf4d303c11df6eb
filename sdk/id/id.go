package id

import (
	"encoding/base64"
	"fmt"

	"github.com/hashicorp/go-uuid"
)

// idBytes is the amount of random data behind every id. 32 bytes encode to
// 43 base64url characters.
const idBytes = 32

// New generates a random, URL-safe ID with an optional prefix. The ID is
// suitable for use as an opaque session identifier.
func New(optionalPrefix string) (string, error) {
	b, err := uuid.GenerateRandomBytes(idBytes)
	if err != nil {
		return "", fmt.Errorf("unable to generate id: %w", err)
	}
	id := base64.RawURLEncoding.EncodeToString(b)
	switch {
	case optionalPrefix != "":
		return fmt.Sprintf("%s_%s", optionalPrefix, id), nil
	default:
		return id, nil
	}
}
