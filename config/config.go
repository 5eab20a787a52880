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
	Harvest   HarvestConfig
	Export    ExportConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server (gleanerd only).
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless. The manual
	// login step needs a visible window, so the default is false.
	Headless bool // default: false

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL for all browser traffic.
	Proxy string

	// UserDataDir is a dedicated profile directory so the upstream login
	// survives restarts. default: "./gleaner_profile"
	UserDataDir string

	// BlockedResourceTypes lists resource types to block while scrolling
	// the feed. default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// AuthWait bounds how long EnsureAuthenticated polls for the operator
	// to finish the manual login. default: 5m
	AuthWait time.Duration
}

// HarvestConfig controls the per-query harvest loop and the scheduler.
type HarvestConfig struct {
	// Queries are the search terms to harvest, in order.
	Queries []string

	// DaysBack is the trailing date window of each search expression.
	// default: 3
	DaysBack int

	// MaxSteps caps the pagination loop per query. default: 50
	MaxSteps int

	// NoProgressLimit is the number of consecutive zero-progress steps
	// after which a query is considered converged. default: 4
	NoProgressLimit int

	// MinContentLength rejects shorter item text as UI noise. default: 5
	MinContentLength int

	// ReadyTimeout bounds the wait for the first content signal after
	// navigation. default: 10s
	ReadyTimeout time.Duration

	// InitialGrace is the fixed delay after navigation before the
	// readiness wait starts, giving the feed time to render. default: 8s
	InitialGrace time.Duration

	// SettleDelay is the pause after each load-more trigger. default: 2s
	SettleDelay time.Duration

	// Cooldown is the inter-query throttle. default: 10s
	Cooldown time.Duration

	// FaultCooldown is the elevated delay after a query-level fault,
	// absorbing transient blocking from the upstream service. default: 15s
	FaultCooldown time.Duration
}

// ExportConfig controls where harvested records are written.
type ExportConfig struct {
	// Dir is the output directory. default: "data/processed"
	Dir string

	// Formats lists the writers to run: "jsonl", "csv". default: both
	Formats []string
}

// AuthConfig controls API key authentication (gleanerd only).
type AuthConfig struct {
	Enabled bool // default: true
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting (gleanerd only).
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// defaultQueries mirrors the market hashtags the harvester was built
// around; override with GLEANER_QUERIES.
var defaultQueries = []string{
	"#nifty", "#nifty50", "#niftyanalysis", "#banknifty", "#sensex",
	"#indianstockmarket", "#stockmarketindia", "#niftylevels",
	"#bankniftylevels", "#nse", "#bse", "#intraday", "#intradaytrading",
	"#optionbuying", "#optionselling",
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: envOr("GLEANER_HOST", "0.0.0.0"),
			Port: envIntOr("GLEANER_PORT", 8080),
			Mode: envOr("GLEANER_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:    envBoolOr("GLEANER_HEADLESS", false),
			NoSandbox:   envBoolOr("GLEANER_NO_SANDBOX", false),
			BrowserBin:  os.Getenv("GLEANER_BROWSER_BIN"),
			Proxy:       os.Getenv("GLEANER_PROXY"),
			UserDataDir: envOr("GLEANER_USER_DATA_DIR", "./gleaner_profile"),
			BlockedResourceTypes: envSliceOr("GLEANER_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			AuthWait: envDurationOr("GLEANER_AUTH_WAIT", 5*time.Minute),
		},
		Harvest: HarvestConfig{
			Queries:          envSliceOr("GLEANER_QUERIES", defaultQueries),
			DaysBack:         envIntOr("GLEANER_DAYS_BACK", 3),
			MaxSteps:         envIntOr("GLEANER_MAX_STEPS", 50),
			NoProgressLimit:  envIntOr("GLEANER_NO_PROGRESS_LIMIT", 4),
			MinContentLength: envIntOr("GLEANER_MIN_CONTENT_LENGTH", 5),
			ReadyTimeout:     envDurationOr("GLEANER_READY_TIMEOUT", 10*time.Second),
			InitialGrace:     envDurationOr("GLEANER_INITIAL_GRACE", 8*time.Second),
			SettleDelay:      envDurationOr("GLEANER_SETTLE_DELAY", 2*time.Second),
			Cooldown:         envDurationOr("GLEANER_COOLDOWN", 10*time.Second),
			FaultCooldown:    envDurationOr("GLEANER_FAULT_COOLDOWN", 15*time.Second),
		},
		Export: ExportConfig{
			Dir:     envOr("GLEANER_EXPORT_DIR", "data/processed"),
			Formats: envSliceOr("GLEANER_EXPORT_FORMATS", []string{"jsonl", "csv"}),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("GLEANER_AUTH_ENABLED", true),
			APIKeys: envSliceOr("GLEANER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("GLEANER_RATE_RPS", 5.0),
			Burst:             envIntOr("GLEANER_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("GLEANER_LOG_LEVEL", "info"),
			Format: envOr("GLEANER_LOG_FORMAT", "json"),
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
