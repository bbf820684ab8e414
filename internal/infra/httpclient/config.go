package httpclient

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for outbound scraping requests.
//
// Security settings:
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - MaxRedirects: Prevents infinite redirect loops
//   - Timeout: Prevents resource starvation from slow servers
//
// Politeness settings:
//   - PerHostRPS and PerHostBurst: Rate limit per target host so a large
//     result set does not hammer a single site
type Config struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 15s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Enforced while reading, not from the Content-Length header.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of HTTP redirects to follow.
	// Default: 5
	MaxRedirects int

	// PerHostRPS is the sustained request rate allowed per target host.
	// Default: 1.0
	PerHostRPS float64

	// PerHostBurst is the burst size allowed per target host.
	// Default: 3
	PerHostBurst int

	// ProxyAPIKey, when set, routes requests through the Scrapy Cloud
	// smart proxy. Empty disables the proxy.
	ProxyAPIKey string

	// UserAgent, when set, pins the User-Agent header and disables the
	// rotation pool. Empty selects the rotating browser pool.
	UserAgent string
}

// DefaultConfig returns the default scraping client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:      15 * time.Second,
		MaxBodySize:  10 * 1024 * 1024,
		MaxRedirects: 5,
		PerHostRPS:   1.0,
		PerHostBurst: 3,
	}
}

// LoadConfigFromEnv builds a Config from environment variables, falling back
// to defaults for anything unset or malformed. Malformed values are ignored
// rather than fatal: a bad tuning knob should not stop the worker.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("SCRAPER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("SCRAPER_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodySize = n
		}
	}
	if v := os.Getenv("SCRAPER_PER_HOST_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.PerHostRPS = f
		}
	}
	cfg.ProxyAPIKey = os.Getenv("SCRAPY_CLOUD_API_KEY")
	cfg.UserAgent = os.Getenv("USER_AGENT")

	return cfg
}
