package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Store     StoreConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Sweep     SweepConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the shared headless browser session.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (required in containers).
	NoSandbox bool // default: true

	// Bin overrides the Chromium binary path.
	Bin string

	// ProtocolTimeout bounds individual CDP operations, including the
	// connectivity probe.
	ProtocolTimeout time.Duration // default: 30s
}

// ScraperConfig controls scraping behavior.
type ScraperConfig struct {
	// NavigationTimeout is the max time for navigating to the profile page.
	NavigationTimeout time.Duration // default: 30s

	// SettleDelay is the wait after navigation before issuing GraphQL calls,
	// giving the page time to establish its cookie/origin context.
	SettleDelay time.Duration // default: 1s

	// UserAgent is sent on every page.
	UserAgent string

	// MaxAttempts is the retry budget per scrape, including the first try.
	MaxAttempts int // default: 2

	// RetryBackoff is the wait before a retry with the existing session.
	RetryBackoff time.Duration // default: 1s

	// ConnectionBackoff is the longer wait after a session teardown.
	ConnectionBackoff time.Duration // default: 2s
}

// StoreConfig controls the SQLite store.
type StoreConfig struct {
	Path string // default: "leetfriends.db"
}

// AuthConfig controls JWT session tokens.
type AuthConfig struct {
	// Secret signs session tokens. Empty disables auth (open access).
	Secret string

	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration // default: 24h
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per user.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per user.
	Burst int // default: 10
}

// SweepConfig controls the background refresh job.
type SweepConfig struct {
	// Enabled toggles the periodic sweep.
	Enabled bool // default: true

	// Interval between sweep passes.
	Interval time.Duration // default: 15m

	// Staleness is how old a profile must be before the sweep refreshes it.
	Staleness time.Duration // default: 1h

	// Concurrency caps simultaneous scrapes within one pass.
	Concurrency int // default: 4

	// ScrapesPerSecond paces dispatches so a pass does not hammer upstream.
	ScrapesPerSecond float64 // default: 1

	// BatchLimit caps how many stale records one pass picks up.
	BatchLimit int // default: 100
}

// CacheConfig controls the in-memory profile cache.
type CacheConfig struct {
	MaxEntries int           // default: 1000
	TTL        time.Duration // default: 10m
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is picked up when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: envOr("LF_HOST", "0.0.0.0"),
			Port: envIntOr("LF_PORT", 8080),
			Mode: envOr("LF_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:        envBoolOr("LF_HEADLESS", true),
			NoSandbox:       envBoolOr("LF_NO_SANDBOX", true),
			Bin:             os.Getenv("LF_BROWSER_BIN"),
			ProtocolTimeout: envDurationOr("LF_PROTOCOL_TIMEOUT", 30*time.Second),
		},
		Scraper: ScraperConfig{
			NavigationTimeout: envDurationOr("LF_NAV_TIMEOUT", 30*time.Second),
			SettleDelay:       envDurationOr("LF_SETTLE_DELAY", time.Second),
			UserAgent:         envOr("LF_USER_AGENT", defaultUserAgent),
			MaxAttempts:       envIntOr("LF_MAX_ATTEMPTS", 2),
			RetryBackoff:      envDurationOr("LF_RETRY_BACKOFF", time.Second),
			ConnectionBackoff: envDurationOr("LF_CONNECTION_BACKOFF", 2*time.Second),
		},
		Store: StoreConfig{
			Path: envOr("LF_DB_PATH", "leetfriends.db"),
		},
		Auth: AuthConfig{
			Secret:   os.Getenv("LF_JWT_SECRET"),
			TokenTTL: envDurationOr("LF_TOKEN_TTL", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("LF_RATE_RPS", 5.0),
			Burst:             envIntOr("LF_RATE_BURST", 10),
		},
		Sweep: SweepConfig{
			Enabled:          envBoolOr("LF_SWEEP_ENABLED", true),
			Interval:         envDurationOr("LF_SWEEP_INTERVAL", 15*time.Minute),
			Staleness:        envDurationOr("LF_SWEEP_STALENESS", time.Hour),
			Concurrency:      envIntOr("LF_SWEEP_CONCURRENCY", 4),
			ScrapesPerSecond: envFloatOr("LF_SWEEP_RATE", 1.0),
			BatchLimit:       envIntOr("LF_SWEEP_BATCH_LIMIT", 100),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("LF_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("LF_CACHE_TTL", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  envOr("LF_LOG_LEVEL", "info"),
			Format: envOr("LF_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
