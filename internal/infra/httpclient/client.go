// Package httpclient provides the shared outbound HTTP client for source
// adapters and the enricher: retries with backoff, per-host rate limiting,
// user agent rotation, and response size capping.
package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"leadscout/internal/resilience/retry"
)

// userAgents is the rotation pool. Requests normally use the first entry;
// RotateUserAgent advances the pool when a provider starts blocking.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (Version/17.4 Safari/605.1.15)",
}

// Recorder receives the outcome of every request so the health monitor can
// track per-engine failure buckets and latency without importing this
// package.
type Recorder interface {
	RecordRequest(engine string, latency time.Duration, err error)
}

// nopRecorder is used when no monitor is attached.
type nopRecorder struct{}

func (nopRecorder) RecordRequest(string, time.Duration, error) {}

// Client is a rate-limited, retrying HTTP client for scraping. It is safe
// for concurrent use.
type Client struct {
	http     *http.Client
	cfg      Config
	recorder Recorder
	retryCfg retry.Config

	uaIndex atomic.Int64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithRecorder attaches a request outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithRetryConfig overrides the default retry profile.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		recorder: nopRecorder{},
		retryCfg: retry.SearchFetchConfig(),
		limiters: make(map[string]*rate.Limiter),
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
	if cfg.ProxyAPIKey != "" {
		proxyURL := &url.URL{
			Scheme: "http",
			User:   url.UserPassword(cfg.ProxyAPIKey, ""),
			Host:   "proxy.zyte.com:8011",
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	c.http = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("too many redirects: %d", len(via))
			}
			return nil
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserAgent returns the pinned user agent when one is configured, otherwise
// the agent currently at the front of the rotation.
func (c *Client) UserAgent() string {
	if c.cfg.UserAgent != "" {
		return c.cfg.UserAgent
	}
	return userAgents[int(c.uaIndex.Load())%len(userAgents)]
}

// RotateUserAgent advances the rotation. The health monitor calls this when
// block-classified failures accumulate.
func (c *Client) RotateUserAgent() {
	c.uaIndex.Add(1)
}

// limiter returns the rate limiter for host, creating it on first use.
func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.cfg.PerHostRPS), c.cfg.PerHostBurst)
		c.limiters[host] = l
	}
	return l
}

// Get fetches rawURL and returns the response body, capped at MaxBodySize.
// engine attributes the request in health accounting. Non-2xx statuses are
// returned as *retry.HTTPError so retry and health classification can act on
// the status code.
func (c *Client) Get(ctx context.Context, engine, rawURL string) ([]byte, error) {
	return c.GetWithHeaders(ctx, engine, rawURL, nil)
}

// GetWithHeaders is Get with extra request headers, used by keyed providers
// that authenticate via header instead of query parameter.
func (c *Client) GetWithHeaders(ctx context.Context, engine, rawURL string, headers map[string]string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("Get: invalid URL %q: %w", rawURL, err)
	}

	if err := c.limiter(u.Hostname()).Wait(ctx); err != nil {
		return nil, fmt.Errorf("Get: rate limit wait: %w", err)
	}

	var body []byte
	start := time.Now()
	err = retry.WithBackoff(ctx, c.retryCfg, func() error {
		var attemptErr error
		body, attemptErr = c.doOnce(ctx, rawURL, headers)
		return attemptErr
	})
	c.recorder.RecordRequest(engine, time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("Get %s: %w", rawURL, err)
	}
	return body, nil
}

// doOnce performs a single request attempt.
func (c *Client) doOnce(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.8,*/*;q=0.7")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		io.CopyN(io.Discard, resp.Body, 512)
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	limited := io.LimitReader(resp.Body, c.cfg.MaxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.cfg.MaxBodySize {
		return nil, fmt.Errorf("response exceeds %d byte limit", c.cfg.MaxBodySize)
	}
	return body, nil
}
