package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/sabithahmd/Wordpress-Azure-Login/entra/callback"
	"github.com/sabithahmd/Wordpress-Azure-Login/login"
)

var homePage = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html><head><title>Sign in</title></head>
<body>
{{- if .Notice}}
<p class="notice">{{.Notice}}</p>
{{- end}}
<a class="button" href="/login/entra">Login with Microsoft</a>
</body></html>
`))

var accountPage = template.Must(template.New("account").Parse(`<!DOCTYPE html>
<html><head><title>Account</title></head>
<body>
<p>Signed in as {{.AccountID}}</p>
<form method="post" action="/logout"><button type="submit">Log out</button></form>
</body></html>
`))

// handleLogin starts a login and redirects to the identity provider.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	u, err := callback.Begin(w, r, s.loader, s.loginSess, s.authCodeOpts...)
	if err != nil {
		s.logger.Warn("unable to start login", "reason", callback.Message(err), "error", err)
		s.errResponse("", err, w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, u, http.StatusFound)
}

// handleLoginURL starts a login and returns the authorize URL for a front
// end to render as its own button.
func (s *Server) handleLoginURL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	u, err := callback.Begin(w, r, s.loader, s.loginSess, s.authCodeOpts...)
	if err != nil {
		s.logger.Warn("unable to start login", "reason", callback.Message(err), "error", err)
		writeJSON(w, callback.StatusCode(err), map[string]string{"error": callback.Message(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.establisher.Logout(w, r); err != nil {
		s.logger.Error("unable to log out", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := s.establisher.CurrentAccountID(r)
	switch {
	case errors.Is(err, login.ErrNotSignedIn):
		http.Redirect(w, r, "/", http.StatusFound)
		return
	case err != nil:
		s.logger.Error("unable to read auth session", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	render(w, accountPage, struct{ AccountID string }{accountID})
}

// handleHome renders the login button.  An identity provider error redirect
// (no code, so the callback middleware let it through) lands here too and
// is shown as a notice.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var notice string
	if idpErr := q.Get("error"); idpErr != "" {
		notice = callback.MsgLoginFailed
		if desc := q.Get("error_description"); desc != "" {
			notice += ": " + desc
		}
		s.logger.Info("identity provider returned an error", "error", idpErr)
	} else if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	render(w, homePage, struct{ Notice string }{notice})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func render(w http.ResponseWriter, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = t.Execute(w, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
