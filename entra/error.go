package entra

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter           = errors.New("invalid parameter")
	ErrNilParameter               = errors.New("nil parameter")
	ErrInvalidCACert              = errors.New("invalid CA certificate")
	ErrInvalidConfig              = errors.New("invalid configuration")
	ErrMissingConfig              = errors.New("missing configuration")
	ErrUnsupportedChallengeMethod = errors.New("unsupported PKCE challenge method")
	ErrTransport                  = errors.New("identity provider request failed")
	ErrProviderResponse           = errors.New("identity provider returned an error")
	ErrMissingMail                = errors.New("profile is missing an email address")
)

// ProviderError is an error payload returned by Entra ID (or Microsoft Graph)
// in an otherwise well formed HTTP response.
// See: https://www.rfc-editor.org/rfc/rfc6749#section-5.2
type ProviderError struct {
	// Code is the error code (for example "invalid_grant").
	Code string

	// Description is the human readable error_description.
	Description string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	switch {
	case e.Description != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Description)
	default:
		return e.Code
	}
}

// Is supports errors.Is(err, ErrProviderResponse)
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderResponse
}
