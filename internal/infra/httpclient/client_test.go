package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/resilience/retry"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PerHostRPS = 1000
	cfg.PerHostBurst = 1000
	return cfg
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

type captureRecorder struct {
	mu      sync.Mutex
	engines []string
	errs    []error
}

func (r *captureRecorder) RecordRequest(engine string, latency time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines = append(r.engines, engine)
	r.errs = append(r.errs, err)
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte("<html>hello</html>"))
	}))
	defer srv.Close()

	rec := &captureRecorder{}
	c := New(testConfig(), WithRecorder(rec), WithRetryConfig(fastRetry()))

	body, err := c.Get(context.Background(), "newsapi", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>hello</html>", string(body))
	assert.Equal(t, []string{"newsapi"}, rec.engines)
	assert.NoError(t, rec.errs[0])
}

func TestClient_Get_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	c := New(testConfig(), WithRetryConfig(fastRetry()))
	body, err := c.Get(context.Background(), "bing_news", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, 3, calls)
}

func TestClient_Get_NonRetryableStatus(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	rec := &captureRecorder{}
	c := New(testConfig(), WithRecorder(rec), WithRetryConfig(fastRetry()))
	_, err := c.Get(context.Background(), "html_search", srv.URL)
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "404 must not be retried")

	var httpErr *retry.HTTPError
	assert.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Error(t, rec.errs[0])
}

func TestClient_Get_BodySizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxBodySize = 1024
	c := New(cfg, WithRetryConfig(retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}))

	_, err := c.Get(context.Background(), "rss", srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "byte limit")
}

func TestClient_RotateUserAgent(t *testing.T) {
	c := New(testConfig())
	first := c.UserAgent()
	c.RotateUserAgent()
	assert.NotEqual(t, first, c.UserAgent())

	for i := 0; i < len(userAgents); i++ {
		c.RotateUserAgent()
	}
	assert.NotEmpty(t, c.UserAgent(), "rotation wraps around the pool")
}

func TestClient_Get_InvalidURL(t *testing.T) {
	c := New(testConfig())
	_, err := c.Get(context.Background(), "rss", "://not-a-url")
	assert.Error(t, err)
}
