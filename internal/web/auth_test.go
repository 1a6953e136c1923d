package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mdnotes/internal/auth"
	"mdnotes/internal/config"
)

func TestRoutesRequireAuthWhenConfigured(t *testing.T) {
	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	authFile := filepath.Join(t.TempDir(), "auth.txt")
	if err := os.WriteFile(authFile, []byte("dev:"+hash+"\n"), 0o600); err != nil {
		t.Fatalf("write auth file: %v", err)
	}
	env := newTestEnv(t, func(cfg *config.Config) { cfg.AuthFile = authFile })

	for _, p := range []string{"/", "/api/notes", "/static/app.js"} {
		rec := env.do(t, http.MethodGet, p, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", p, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") == "" {
			t.Fatalf("%s: expected basic auth challenge", p)
		}
	}

	cases := []struct {
		user, pass string
		want       int
	}{
		{"dev", "secret", http.StatusOK},
		{"dev", "wrong", http.StatusUnauthorized},
		{"other", "secret", http.StatusUnauthorized},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		req.SetBasicAuth(c.user, c.pass)
		rec := httptest.NewRecorder()
		env.srv.Handler().ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Fatalf("%s/%s: expected %d, got %d", c.user, c.pass, c.want, rec.Code)
		}
	}
}

func TestAuthPairMustBeComplete(t *testing.T) {
	if _, err := newAuth(config.Config{AuthUser: "only-user"}); err == nil {
		t.Fatalf("expected error for user without password")
	}
	a, err := newAuth(config.Config{})
	if err != nil || a != nil {
		t.Fatalf("expected auth disabled, got %v %v", a, err)
	}
}
