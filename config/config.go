package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultUserAgent is the fixed desktop user-agent string sent with every
// navigation. Kept in sync with a realistic stable-channel Chrome on Windows.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds all application configuration.
type Config struct {
	Browser   BrowserConfig
	Fetch     FetchConfig
	Cert      CertConfig
	Watcher   WatcherConfig
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// BrowserConfig controls the Chromium instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// IgnoreHTTPSErrors tolerates invalid TLS certificates.
	IgnoreHTTPSErrors bool // default: false

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL for all requests.
	Proxy string

	// UserAgent is the navigation user-agent string.
	UserAgent string // default: DefaultUserAgent

	// ViewportWidth and ViewportHeight fix the page viewport.
	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080
}

// FetchConfig controls fetch behavior.
type FetchConfig struct {
	// DefaultTimeout is the uniform per-wait-step timeout.
	DefaultTimeout time.Duration // default: 60s

	// GraceWait is slept after network idle before extraction starts.
	GraceWait time.Duration // default: 2s
}

// CertConfig controls client-certificate auto-selection.
type CertConfig struct {
	// LookupTimeout bounds each certificate-store query.
	LookupTimeout time.Duration // default: 10s

	// Disabled skips the store lookup and the auto-select policy entirely.
	Disabled bool
}

// WatcherConfig controls the certificate-dialog watcher.
type WatcherConfig struct {
	// PollInterval is the window-scan cycle period.
	PollInterval time.Duration // default: 500ms

	// JoinTimeout bounds the wait for the watcher to exit on shutdown.
	JoinTimeout time.Duration // default: 2s

	// Disabled turns the watcher off even where the host supports it.
	Disabled bool
}

// ServerConfig controls the HTTP API server (serve mode).
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication (serve mode).
type AuthConfig struct {
	Enabled bool     // default: false
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting (serve mode).
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the fetch response cache (serve mode).
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string // default: "info"
	File  string // optional rotating log file
}

// Load reads configuration from environment variables with sane defaults.
// CLI flags override the loaded values at the command layer.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:          envBoolOr("PAGEGRAB_HEADLESS", true),
			IgnoreHTTPSErrors: envBoolOr("PAGEGRAB_IGNORE_HTTPS_ERRORS", false),
			NoSandbox:         envBoolOr("PAGEGRAB_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("PAGEGRAB_BROWSER_BIN"),
			Proxy:             os.Getenv("PAGEGRAB_PROXY"),
			UserAgent:         envOr("PAGEGRAB_USER_AGENT", DefaultUserAgent),
			ViewportWidth:     envIntOr("PAGEGRAB_VIEWPORT_WIDTH", 1920),
			ViewportHeight:    envIntOr("PAGEGRAB_VIEWPORT_HEIGHT", 1080),
		},
		Fetch: FetchConfig{
			DefaultTimeout: envDurationOr("PAGEGRAB_TIMEOUT", 60*time.Second),
			GraceWait:      envDurationOr("PAGEGRAB_WAIT_TIME", 2*time.Second),
		},
		Cert: CertConfig{
			LookupTimeout: envDurationOr("PAGEGRAB_CERT_LOOKUP_TIMEOUT", 10*time.Second),
			Disabled:      envBoolOr("PAGEGRAB_CERT_DISABLED", false),
		},
		Watcher: WatcherConfig{
			PollInterval: envDurationOr("PAGEGRAB_WATCHER_INTERVAL", 500*time.Millisecond),
			JoinTimeout:  envDurationOr("PAGEGRAB_WATCHER_JOIN_TIMEOUT", 2*time.Second),
			Disabled:     envBoolOr("PAGEGRAB_WATCHER_DISABLED", false),
		},
		Server: ServerConfig{
			Host: envOr("PAGEGRAB_HOST", "0.0.0.0"),
			Port: envIntOr("PAGEGRAB_PORT", 8080),
			Mode: envOr("PAGEGRAB_MODE", "release"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PAGEGRAB_AUTH_ENABLED", false),
			APIKeys: envSliceOr("PAGEGRAB_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PAGEGRAB_RATE_RPS", 2.0),
			Burst:             envIntOr("PAGEGRAB_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("PAGEGRAB_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level: envOr("PAGEGRAB_LOG_LEVEL", "info"),
			File:  os.Getenv("PAGEGRAB_LOG_FILE"),
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
		if b, err := strconv.ParseBool(v); err == nil {
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

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
