// Package auth checks HTTP Basic credentials against argon2id password hashes.
package auth

import (
	"bufio"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	notefs "mdnotes/internal/storage/fs"
)

const (
	defaultMemory     = 64 * 1024
	defaultIterations = 3
	defaultThreads    = 1
	defaultSaltLength = 16
	defaultKeyLength  = 32

	hashPrefix = "$argon2id$"
)

var (
	ErrEmptyPassword = errors.New("password must not be empty")
	ErrInvalidHash   = errors.New("invalid argon2id hash")
	ErrInvalidUser   = errors.New("invalid user name")
)

// Hash is a parsed argon2id PHC string.
type Hash struct {
	m    uint32
	t    uint32
	p    uint8
	salt []byte
	sum  []byte
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, defaultSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey([]byte(password), salt, defaultIterations, defaultMemory, defaultThreads, defaultKeyLength)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		hashPrefix,
		argon2.Version,
		defaultMemory,
		defaultIterations,
		defaultThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

func ParseHash(phc string) (*Hash, error) {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, fmt.Errorf("%w: unsupported version %s", ErrInvalidHash, parts[2])
	}
	h := &Hash{}
	seen := 0
	for _, param := range strings.Split(parts[3], ",") {
		key, val, ok := strings.Cut(param, "=")
		if !ok {
			return nil, fmt.Errorf("%w: bad parameter %q", ErrInvalidHash, param)
		}
		var bits int
		switch key {
		case "m", "t":
			bits = 32
		case "p":
			bits = 8
		default:
			return nil, fmt.Errorf("%w: unknown parameter %q", ErrInvalidHash, key)
		}
		n, err := strconv.ParseUint(val, 10, bits)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("%w: bad value for %s", ErrInvalidHash, key)
		}
		switch key {
		case "m":
			h.m = uint32(n)
		case "t":
			h.t = uint32(n)
		case "p":
			h.p = uint8(n)
		}
		seen++
	}
	if seen != 3 {
		return nil, fmt.Errorf("%w: expected m, t and p", ErrInvalidHash)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("%w: salt", ErrInvalidHash)
	}
	if h.sum, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.sum) == 0 {
		return nil, fmt.Errorf("%w: key", ErrInvalidHash)
	}
	return h, nil
}

func (h *Hash) Verify(password string) bool {
	sum := argon2.IDKey([]byte(password), h.salt, h.t, h.m, h.p, uint32(len(h.sum)))
	return subtle.ConstantTimeCompare(sum, h.sum) == 1
}

// Users is the set of accounts allowed to use the server.
type Users struct {
	hashes  map[string]*Hash
	envUser string
	envPass string
}

// NewUsers combines the accounts of an auth file (may be nil) with an optional
// plain user/password pair taken from the environment.
func NewUsers(hashes map[string]*Hash, user, pass string) *Users {
	if hashes == nil {
		hashes = map[string]*Hash{}
	}
	return &Users{hashes: hashes, envUser: user, envPass: pass}
}

func (u *Users) Len() int {
	n := len(u.hashes)
	if u.envUser != "" && u.envPass != "" {
		if _, dup := u.hashes[u.envUser]; !dup {
			n++
		}
	}
	return n
}

func (u *Users) Authenticate(user, pass string) bool {
	if u.envUser != "" && u.envPass != "" &&
		subtle.ConstantTimeCompare([]byte(user), []byte(u.envUser)) == 1 &&
		subtle.ConstantTimeCompare([]byte(pass), []byte(u.envPass)) == 1 {
		return true
	}
	h, ok := u.hashes[user]
	if !ok {
		return false
	}
	return h.Verify(pass)
}

// LoadFile reads user:hash lines. Blank lines and # comments are skipped.
func LoadFile(path string) (map[string]*Hash, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	users := make(map[string]*Hash, len(lines))
	for _, l := range lines {
		if _, exists := users[l.user]; exists {
			return nil, fmt.Errorf("duplicate user %q in auth file", l.user)
		}
		parsed, err := ParseHash(l.hash)
		if err != nil {
			return nil, fmt.Errorf("invalid auth line %d: %w", l.num, err)
		}
		users[l.user] = parsed
	}
	return users, nil
}

// SetUser adds or replaces user in the auth file at path, creating the file
// when it does not exist. It reports whether the user was already present.
func SetUser(path, user, hash string) (bool, error) {
	if user == "" || strings.ContainsAny(user, ":\n\r") || strings.TrimSpace(user) != user {
		return false, ErrInvalidUser
	}
	if _, err := ParseHash(hash); err != nil {
		return false, err
	}
	entries, err := readEntries(path)
	if err != nil {
		return false, err
	}
	_, existed := entries[user]
	entries[user] = hash
	return existed, writeEntries(path, entries)
}

// RemoveUser deletes user from the auth file. It reports whether the user was
// present; a missing file means no users.
func RemoveUser(path, user string) (bool, error) {
	entries, err := readEntries(path)
	if err != nil {
		return false, err
	}
	if _, ok := entries[user]; !ok {
		return false, nil
	}
	delete(entries, user)
	return true, writeEntries(path, entries)
}

// UserNames lists the users of the auth file in sorted order.
func UserNames(path string) ([]string, error) {
	entries, err := readEntries(path)
	if err != nil {
		return nil, err
	}
	return sortedNames(entries), nil
}

func readEntries(path string) (map[string]string, error) {
	entries := map[string]string{}
	lines, err := readLines(path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		entries[l.user] = l.hash
	}
	return entries, nil
}

func writeEntries(path string, entries map[string]string) error {
	var b strings.Builder
	for _, name := range sortedNames(entries) {
		b.WriteString(name + ":" + entries[name] + "\n")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create auth dir: %w", err)
	}
	if err := notefs.WriteFileAtomic(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write auth file: %w", err)
	}
	return nil
}

func sortedNames(entries map[string]string) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type authLine struct {
	num  int
	user string
	hash string
}

func readLines(path string) ([]authLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open auth file: %w", err)
	}
	defer f.Close()

	var lines []authLine
	scanner := bufio.NewScanner(f)
	num := 0
	for scanner.Scan() {
		num++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, hash, ok := strings.Cut(line, ":")
		user = strings.TrimSpace(user)
		hash = strings.TrimSpace(hash)
		if !ok || user == "" || hash == "" {
			return nil, fmt.Errorf("invalid auth line %d: expected user:hash", num)
		}
		if !strings.HasPrefix(hash, hashPrefix) {
			return nil, fmt.Errorf("invalid auth line %d: expected argon2id hash", num)
		}
		lines = append(lines, authLine{num: num, user: user, hash: hash})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read auth file: %w", err)
	}
	return lines, nil
}
