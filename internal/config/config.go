package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string // debug, info, warn, error

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Shared session and rate-limit storage. Empty keeps both in memory.
	RedisURL string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Local email/password accounts
	EnableLocalAccounts bool

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Limits
	MaxInputBytes int // Largest accepted text submission
	RateLimitMax  int // Requests per minute per IP

	// Retention
	RecordRetention time.Duration // 0 keeps saved records forever
	PruneInterval   time.Duration

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "Text Record Processor"
	SiteTagline string // env: SITE_TAGLINE
	SiteFooter  string // env: SITE_FOOTER
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		ServerAddr:          getEnv("SERVER_ADDR", ":3000"),
		BaseURL:             getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:         getEnv("DATABASE_URL", "postgres://localhost:5432/textrecords?sslmode=disable"),
		RedisURL:            getEnv("REDIS_URL", ""),
		TLSEnabled:          getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:         getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:          getEnv("TLS_KEY_FILE", ""),
		OIDCIssuer:          getEnv("OIDC_ISSUER", ""),
		OIDCClientID:        getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret:    getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:     getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		EnableLocalAccounts: getBool("ENABLE_LOCAL_ACCOUNTS", true),
		SessionSecret:       getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:         getEnv("CORS_ORIGINS", ""),
		MaxInputBytes:       getInt("MAX_INPUT_BYTES", 1<<20),
		RateLimitMax:        getInt("RATE_LIMIT_MAX", 100),
		RecordRetention:     getDuration("RECORD_RETENTION", 0),
		PruneInterval:       getPositiveDuration("PRUNE_INTERVAL", time.Hour),

		SiteTitle:   getEnv("SITE_TITLE", "Text Record Processor"),
		SiteTagline: getEnv("SITE_TAGLINE", "Paste a list, count every line"),
		SiteFooter:  getEnv("SITE_FOOTER", "Text Record Processor"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// getPositiveDuration is getDuration for values where zero is meaningless, such as ticker intervals.
func getPositiveDuration(key string, fallback time.Duration) time.Duration {
	if d := getDuration(key, fallback); d > 0 {
		return d
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsOIDCEnabled returns true if an OIDC issuer is configured.
func (c *Config) IsOIDCEnabled() bool {
	return c.OIDCIssuer != ""
}

// IsPruningEnabled returns true if saved records expire.
func (c *Config) IsPruningEnabled() bool {
	return c.RecordRetention > 0
}
