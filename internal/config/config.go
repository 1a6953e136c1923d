package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort       = "3000"
	defaultMaxBody    = 1 << 20
	defaultSessionTTL = 30 * time.Minute
	defaultCodeStyle  = "github"
)

type Config struct {
	NotesDir     string
	DataDir      string
	ListenAddr   string
	AuthUser     string
	AuthPass     string
	AuthFile     string
	HistoryDepth int
	SessionTTL   time.Duration
	MaxBodyBytes int64
	Watch        bool
	CodeStyle    string
}

// Load reads the configuration from the environment after merging the .env
// file in the working directory, if there is one.
func Load() Config {
	_ = LoadEnvFile(envFileName)

	notesDir := envOr("NOTES_DIR", "notes")
	cfg := Config{
		NotesDir:   notesDir,
		DataDir:    envOr("NOTES_DATA_DIR", filepath.Join(notesDir, ".notes")),
		ListenAddr: listenAddr(),
		AuthUser:   os.Getenv("NOTES_AUTH_USER"),
		AuthPass:   os.Getenv("NOTES_AUTH_PASS"),
		AuthFile:   os.Getenv("NOTES_AUTH_FILE"),
		CodeStyle:  envOr("NOTES_CODE_STYLE", defaultCodeStyle),
	}

	cfg.HistoryDepth = parseIntOr("NOTES_HISTORY_DEPTH", 0)
	cfg.SessionTTL = parseDurationOr("NOTES_SESSION_TTL", defaultSessionTTL)
	cfg.MaxBodyBytes = int64(parseIntOr("NOTES_MAX_BODY", defaultMaxBody))
	cfg.Watch = parseBoolOr("NOTES_WATCH", true)
	return cfg
}

// AuthEnabled reports whether requests must carry credentials.
func (c Config) AuthEnabled() bool {
	return c.AuthFile != "" || (c.AuthUser != "" && c.AuthPass != "")
}

func (c Config) IndexPath() string {
	return filepath.Join(c.DataDir, "index.sqlite")
}

func listenAddr() string {
	if v := os.Getenv("NOTES_LISTEN_ADDR"); v != "" {
		return v
	}
	return "127.0.0.1:" + envOr("PORT", defaultPort)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func parseBoolOr(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
