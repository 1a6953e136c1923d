package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}
	parsed, err := ParseHash(hash)
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	if !parsed.Verify("secret-password") {
		t.Fatal("expected password to verify")
	}
	if parsed.Verify("wrong-password") {
		t.Fatal("expected password to fail verification")
	}
	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestParseHashRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$c3Vt",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$c3Vt",
		"$argon2id$v=19$m=1,t=1$c2FsdA$c3Vt",
		"$argon2id$v=19$m=1,t=1,x=1$c2FsdA$c3Vt",
		"$argon2id$v=19$m=1,t=0,p=1$c2FsdA$c3Vt",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$c3Vt",
	} {
		if _, err := ParseHash(in); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", in, err)
		}
	}
}

func TestSetUserAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.txt")
	first, err := HashPassword("one")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("two")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if existed, err := SetUser(path, "bob", first); err != nil || existed {
		t.Fatalf("add bob: %v %v", existed, err)
	}
	if _, err := SetUser(path, "alice", first); err != nil {
		t.Fatalf("add alice: %v", err)
	}
	if existed, err := SetUser(path, "bob", second); err != nil || !existed {
		t.Fatalf("update bob: %v %v", existed, err)
	}
	if _, err := SetUser(path, "bad:name", first); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "alice:") {
		t.Fatalf("expected sorted file, got %q", data)
	}

	users, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(users) != 2 || !users["bob"].Verify("two") || !users["alice"].Verify("one") {
		t.Fatalf("unexpected users %v", users)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	hash, err := HashPassword("x")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	cases := map[string]string{
		"missing colon": "alice\n",
		"not argon":     "alice:plain\n",
		"duplicate":     "alice:" + hash + "\nalice:" + hash + "\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_"))
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestUsersAuthenticate(t *testing.T) {
	hash, err := HashPassword("filepass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	parsed, err := ParseHash(hash)
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	u := NewUsers(map[string]*Hash{"carol": parsed}, "env", "envpass")
	if u.Len() != 2 {
		t.Fatalf("expected 2 users, got %d", u.Len())
	}
	cases := []struct {
		user, pass string
		want       bool
	}{
		{"carol", "filepass", true},
		{"carol", "nope", false},
		{"env", "envpass", true},
		{"env", "filepass", false},
		{"dave", "filepass", false},
	}
	for _, c := range cases {
		if got := u.Authenticate(c.user, c.pass); got != c.want {
			t.Fatalf("Authenticate(%q, %q) = %v, want %v", c.user, c.pass, got, c.want)
		}
	}
	if NewUsers(nil, "", "").Len() != 0 {
		t.Fatalf("expected no users")
	}
}

func TestRemoveUserAndNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "auth.txt")
	if names, err := UserNames(path); err != nil || len(names) != 0 {
		t.Fatalf("expected no users for missing file, got %v %v", names, err)
	}
	if removed, err := RemoveUser(path, "ghost"); err != nil || removed {
		t.Fatalf("remove from missing file: %v %v", removed, err)
	}
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	for _, name := range []string{"zed", "amy", "kim"} {
		if _, err := SetUser(path, name, hash); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	if removed, err := RemoveUser(path, "kim"); err != nil || !removed {
		t.Fatalf("remove kim: %v %v", removed, err)
	}
	names, err := UserNames(path)
	if err != nil {
		t.Fatalf("UserNames: %v", err)
	}
	if strings.Join(names, ",") != "amy,zed" {
		t.Fatalf("unexpected names %v", names)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 auth file, got %v", info.Mode().Perm())
	}
}
