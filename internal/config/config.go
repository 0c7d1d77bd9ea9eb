// Package config loads process-wide configuration from the environment.
// The returned Config is immutable after Load and is read concurrently by
// every request-handling path without locking.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Port      int
	DBPath    string
	UploadDir string

	// Authentication core.
	JWTSecret string
	TokenTTL  time.Duration
	// LoginDistinctErrors preserves the legacy behavior of distinguishing
	// "user not found" from "invalid password" at login. It leaks account
	// existence; the default keeps both unified as invalid credentials.
	LoginDistinctErrors bool

	// Argon2id cost parameters.
	HashSaltLength  uint32
	HashTime        uint32
	HashMemoryKiB   uint32
	HashParallelism uint8
	HashKeyLength   uint32

	// Uploads.
	MaxUploadBytes    int64
	AllowedFileTypes  []string
	AllowedExtensions []string

	// CORS.
	AllowedOrigins []string

	// Optional GitHub OAuth login; routes are registered only when the
	// client ID and secret are both set.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Load reads configuration from environment variables, applying defaults
// for everything except JWT_SECRET, which is required.
func Load() (*Config, error) {
	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}

	ttl := time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TOKEN_TTL %q: %w", raw, err)
		}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required (try: openssl rand -hex 32)")
	}

	maxUpload, err := intEnv("MAX_UPLOAD_BYTES", 16<<20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:      port,
		DBPath:    getEnv("DB_PATH", "data/portfolio.db"),
		UploadDir: getEnv("UPLOAD_DIR", "data/uploads"),

		JWTSecret:           secret,
		TokenTTL:            ttl,
		LoginDistinctErrors: boolEnv("LOGIN_DISTINCT_ERRORS", false),

		HashSaltLength:  32,
		HashTime:        16,
		HashMemoryKiB:   16 * 1024,
		HashParallelism: 1,
		HashKeyLength:   64,

		MaxUploadBytes:    int64(maxUpload),
		AllowedFileTypes:  listEnv("ALLOWED_FILE_TYPES", []string{"image", "document"}),
		AllowedExtensions: listEnv("ALLOWED_EXTENSIONS", []string{"png", "jpg", "jpeg", "webp", "svg", "pdf"}),

		AllowedOrigins: listEnv("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	return cfg, nil
}

// GitHubEnabled reports whether the OAuth login path is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func boolEnv(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func listEnv(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
