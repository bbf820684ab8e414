package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/infra/health"
)

func TestHealthServer_Liveness(t *testing.T) {
	h := NewHealthServer(":0", discardLogger(), nil)

	rec := httptest.NewRecorder()
	h.handleLiveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestHealthServer_Readiness(t *testing.T) {
	h := NewHealthServer(":0", discardLogger(), nil)

	rec := httptest.NewRecorder()
	h.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body.Status)

	h.SetReady(true)

	rec = httptest.NewRecorder()
	h.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h.SetReady(false)

	rec = httptest.NewRecorder()
	h.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthServer_Engines(t *testing.T) {
	monitor := health.NewMonitor(nil)
	monitor.SetEngineStatus("newsapi", 12, 340*time.Millisecond, nil)
	monitor.SetEngineStatus("bing_news", 0, 90*time.Millisecond, errors.New("quota exceeded"))

	h := NewHealthServer(":0", discardLogger(), monitor)

	rec := httptest.NewRecorder()
	h.handleEngines(rec, httptest.NewRequest(http.MethodGet, "/health/engines", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report health.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Engines, 2)
	assert.Equal(t, health.StatusSuccess, report.Engines["newsapi"].Status)
	assert.Equal(t, 12, report.Engines["newsapi"].Results)
	assert.Equal(t, health.StatusFailed, report.Engines["bing_news"].Status)
	assert.Equal(t, "quota exceeded", report.Engines["bing_news"].Error)
}

func TestHealthServer_EnginesWithoutMonitor(t *testing.T) {
	h := NewHealthServer(":0", discardLogger(), nil)

	rec := httptest.NewRecorder()
	h.handleEngines(rec, httptest.NewRequest(http.MethodGet, "/health/engines", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "{}", rec.Body.String())
}

func TestHealthServer_GracefulShutdown(t *testing.T) {
	h := NewHealthServer("127.0.0.1:0", discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- h.Start(ctx)
	}()

	// Give the listener a moment to come up before cancelling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("health server did not shut down")
	}
}
