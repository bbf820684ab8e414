package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"leadscout/internal/infra/health"
)

// HealthServer exposes the worker's health over HTTP:
//   - /health: liveness probe (always 200 OK)
//   - /health/ready: readiness probe (200 when ready, 503 when not)
//   - /health/engines: the per-engine scraping health report
//
// The server supports graceful shutdown via context cancellation.
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	monitor *health.Monitor
	isReady *atomic.Bool
	server  *http.Server
}

// healthResponse is the JSON body for the liveness and readiness probes.
type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthServer creates a health server bound to addr. The monitor may be
// nil; /health/engines then reports an empty report.
func NewHealthServer(addr string, logger *slog.Logger, monitor *health.Monitor) *HealthServer {
	isReady := &atomic.Bool{}
	isReady.Store(false)

	return &HealthServer{
		addr:    addr,
		logger:  logger,
		monitor: monitor,
		isReady: isReady,
	}
}

// Start runs the health server until ctx is cancelled or the listener
// fails. Returns http.ErrServerClosed on graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	mux.HandleFunc("/health/engines", h.handleEngines)

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		return http.ErrServerClosed

	case err := <-errChan:
		if err != http.ErrServerClosed {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady flips the readiness state reported by /health/ready.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	code, status := http.StatusOK, "ok"
	if !h.isReady.Load() {
		code, status = http.StatusServiceUnavailable, "not ready"
	}
	h.writeJSON(w, code, healthResponse{Status: status})
}

// handleEngines serves the scraping health report: per-engine status,
// success rate, error buckets, and recommendations.
func (h *HealthServer) handleEngines(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
		return
	}
	h.writeJSON(w, http.StatusOK, h.monitor.Report())
}
