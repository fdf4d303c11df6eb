package callback

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/sabithahmd/Wordpress-Azure-Login/account"
	"github.com/sabithahmd/Wordpress-Azure-Login/entra"
)

// User visible messages for failed logins.
const (
	MsgNotConfigured       = "Login is not configured"
	MsgRedirectURIMismatch = "Redirect URI mismatch"
	MsgStateMismatch       = "State mismatch"
	MsgVerifierNotFound    = "Code verifier not found in session"
	MsgTransport           = "Unable to reach the identity provider"
	MsgUserNotFound        = "User not found"
	MsgLoginFailed         = "Login failed"
)

// ErrorResponseFunc is used by AuthCode to create a http response when a
// callback fails.
//
// The function receives the state returned as part of the authorization
// response and the error that stopped the login.  Message and StatusCode
// map the error to what the user should see.
type ErrorResponseFunc func(state string, e error, w http.ResponseWriter, req *http.Request)

// Message returns the user visible message for a login error.  Anything
// that isn't a known failure is "Login failed".
func Message(err error) string {
	var pe *entra.ProviderError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, entra.ErrInvalidConfig), errors.Is(err, entra.ErrMissingConfig):
		return MsgNotConfigured
	case errors.Is(err, ErrRedirectURIMismatch):
		return MsgRedirectURIMismatch
	case errors.Is(err, ErrStateMismatch):
		return MsgStateMismatch
	case errors.Is(err, ErrVerifierNotFound):
		return MsgVerifierNotFound
	case errors.Is(err, entra.ErrTransport):
		return MsgTransport
	case errors.As(err, &pe):
		if pe.Description != "" {
			return pe.Description
		}
		return pe.Code
	case errors.Is(err, entra.ErrMissingMail), errors.Is(err, account.ErrNotFound):
		return MsgUserNotFound
	default:
		return MsgLoginFailed
	}
}

// StatusCode returns the http status for a login error.
func StatusCode(err error) int {
	var ve *ValidationError
	switch {
	case errors.Is(err, entra.ErrInvalidConfig), errors.Is(err, entra.ErrMissingConfig):
		return http.StatusServiceUnavailable
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, entra.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, entra.ErrProviderResponse):
		return http.StatusUnauthorized
	case errors.Is(err, entra.ErrMissingMail), errors.Is(err, account.ErrNotFound):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// DefaultErrorResponse writes a minimal HTML page with the escaped message.
func DefaultErrorResponse(_ string, e error, w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(StatusCode(e))
	_, _ = fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><title>%s</title></head><body><p>%s</p></body></html>\n",
		html.EscapeString(MsgLoginFailed), html.EscapeString(Message(e)))
}
