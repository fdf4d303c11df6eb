// Package loginwithazure signs users of a web application in with their
// Microsoft Entra ID (Azure AD) work or school account.
//
// The flow is the OAuth 2.0 authorization code grant with PKCE (RFC 7636):
// callback.Begin stores a fresh code verifier in a short lived session and
// returns the authorize URL; the callback.AuthCode middleware checks the
// redirect URI, the state and the stored verifier, exchanges the code for an
// access token, reads the user's email from Microsoft Graph and signs the
// user agent in as the local account registered with that email.
//
// Packages:
//
//	entra           provider configuration, PKCE, token and profile calls
//	entra/callback  the callback state machine and middleware
//	session         server side sessions bound to cookies
//	account         local accounts looked up by email
//	settings        stored options and the credential source
//	login           establishing and reading the signed in session
//	storage/sqlite  SQLite backed stores
//	server          the HTTP server used by cmd/entra-login
package loginwithazure
