package web

import (
	"errors"
	"log/slog"
	"net/http"

	"mdnotes/internal/auth"
	"mdnotes/internal/config"
)

type Auth struct {
	users *auth.Users
}

// newAuth returns nil when no credentials are configured.
func newAuth(cfg config.Config) (*Auth, error) {
	var hashes map[string]*auth.Hash
	if cfg.AuthFile != "" {
		loaded, err := auth.LoadFile(cfg.AuthFile)
		if err != nil {
			return nil, err
		}
		hashes = loaded
	}
	if (cfg.AuthUser == "") != (cfg.AuthPass == "") {
		return nil, errors.New("NOTES_AUTH_USER and NOTES_AUTH_PASS must be set together")
	}
	users := auth.NewUsers(hashes, cfg.AuthUser, cfg.AuthPass)
	if users.Len() == 0 {
		return nil, nil
	}
	return &Auth{users: users}, nil
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || !a.users.Authenticate(user, pass) {
			if ok {
				slog.Warn("auth failed", "user", user, "remote", r.RemoteAddr)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="mdnotes", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := WithUser(r.Context(), User{Name: user})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
