// Package entra provides support for signing users in with Microsoft Entra ID
// (Azure AD) using the OAuth2 Authorization Code Flow with PKCE. It covers
// generating the PKCE verifier/challenge pair, composing the tenant's
// authorization URL, exchanging the authorization code for an access token and
// resolving the signed in user's profile from Microsoft Graph.
//
// Validating the redirect back from Entra ID and mapping the resolved identity
// to a local account are handled by the callback package.
package entra
