package entra

import "encoding/json"

// AccessToken is an oauth access_token issued by Entra ID.  It is only ever
// used as a bearer credential for Microsoft Graph.
type AccessToken string

// RedactedAccessToken is the redacted string or json for an oauth access_token
const RedactedAccessToken = "[REDACTED: access_token]"

// String will redact the token
func (t AccessToken) String() string {
	return RedactedAccessToken
}

// MarshalJSON will redact the token
func (t AccessToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedAccessToken)
}

// AuthData is the token endpoint's reply.  Either AccessToken or Error is
// set.  See: https://learn.microsoft.com/en-us/entra/identity-platform/v2-oauth2-auth-code-flow#successful-response-2
type AuthData struct {
	AccessToken      AccessToken `json:"access_token"`
	TokenType        string      `json:"token_type,omitempty"`
	ExpiresIn        int64       `json:"expires_in,omitempty"`
	Scope            string      `json:"scope,omitempty"`
	Error            string      `json:"error,omitempty"`
	ErrorDescription string      `json:"error_description,omitempty"`
}

// providerError returns the reply's error payload or nil.
func (a *AuthData) providerError() *ProviderError {
	if a.Error == "" {
		return nil
	}
	return &ProviderError{Code: a.Error, Description: a.ErrorDescription}
}
