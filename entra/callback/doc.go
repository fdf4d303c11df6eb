/*
Package callback completes the Entra ID authorization code flow.

Begin stores a fresh PKCE verifier in the user agent's session and returns
the authorize URL.  AuthCode is middleware that recognizes the redirect back
from Entra ID, validates it, redeems the code and signs the matching local
account in.

Example:

	loader, _ := settings.NewLoader(store)
	pkce, _ := session.NewManager(sessionStore, "entra_login")
	mw, _ := callback.AuthCode(loader, pkce, establisher, nil,
		callback.WithSiteURL("https://www.example.com"))
	http.ListenAndServe(":8080", mw(mux))
*/
package callback
