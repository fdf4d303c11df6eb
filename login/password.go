package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/hashicorp/go-hclog"
)

// PasswordLoginDisabledMessage is the body sent when a password login is
// refused.
const PasswordLoginDisabledMessage = "Password login is disabled."

// maxFormMemory is the part of a multipart form held in memory; the rest
// spills to temporary files.
const maxFormMemory = 32 << 20

// PasswordFlag reports whether password login is switched off.
// *settings.Loader satisfies it.
type PasswordFlag interface {
	PasswordLoginDisabled(ctx context.Context) (bool, error)
}

// PasswordGuard refuses form posts carrying password login fields ("log" or
// "user_login") with 403 when the flag is on.  Both urlencoded and multipart
// bodies are inspected.  While the flag is on, a post whose form can't be
// parsed is refused with 400.  Everything else reaches next.
func PasswordGuard(flag PasswordFlag, logger hclog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		found, parseErr := hasPasswordFields(r)
		if parseErr == nil && !found {
			next.ServeHTTP(w, r)
			return
		}
		disabled, err := flag.PasswordLoginDisabled(r.Context())
		if err != nil {
			logger.Error("unable to read password login setting", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		switch {
		case !disabled:
			next.ServeHTTP(w, r)
		case parseErr != nil:
			logger.Debug("refusing unparsable post", "error", parseErr)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		default:
			http.Error(w, PasswordLoginDisabledMessage, http.StatusForbidden)
		}
	})
}

func hasPasswordFields(r *http.Request) (bool, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return false, err
	}
	has := func(name string) bool {
		if _, ok := r.PostForm[name]; ok {
			return true
		}
		if r.MultipartForm != nil {
			_, ok := r.MultipartForm.Value[name]
			return ok
		}
		return false
	}
	return has("log") || has("user_login"), nil
}
