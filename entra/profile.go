package entra

import (
	"encoding/json"
	"strings"
)

// UserProfile is the subset of the Microsoft Graph /me resource used to
// identify a local account.
type UserProfile struct {
	Mail              string     `json:"mail,omitempty"`
	UserPrincipalName string     `json:"userPrincipalName,omitempty"`
	DisplayName       string     `json:"displayName,omitempty"`
	Id                string     `json:"id,omitempty"`
	Error             ErrorField `json:"error,omitempty"`
	ErrorDescription  string     `json:"error_description,omitempty"`
}

// ErrorField is the profile reply's "error" member.  Graph sends an object
// with a code and message while some proxies reply with an oauth style
// string.  Both are accepted.
type ErrorField struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// UnmarshalJSON accepts either a string or a {"code","message"} object.
func (e *ErrorField) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		e.Code = s
		return nil
	}
	type plain ErrorField
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = ErrorField(p)
	return nil
}

// IsZero reports whether the reply carried no error member.
func (e ErrorField) IsZero() bool {
	return e.Code == "" && e.Message == ""
}

// providerError returns the reply's error payload or nil.
func (p *UserProfile) providerError() *ProviderError {
	if p.Error.IsZero() && p.ErrorDescription == "" {
		return nil
	}
	pe := &ProviderError{Code: p.Error.Code, Description: p.ErrorDescription}
	if pe.Description == "" {
		pe.Description = p.Error.Message
	}
	if pe.Code == "" {
		pe.Code = "profile_error"
	}
	return pe
}

// Email returns the profile's mail, falling back to the user principal name
// when upnFallback is set and the UPN looks like an address.
func (p *UserProfile) Email(upnFallback bool) string {
	if m := strings.TrimSpace(p.Mail); m != "" {
		return m
	}
	if upnFallback && strings.Contains(p.UserPrincipalName, "@") {
		return strings.TrimSpace(p.UserPrincipalName)
	}
	return ""
}
