// Package health aggregates HTTP outcomes across adapters into a process
// wide view: per-engine status, failure buckets, and recovery
// recommendations.
package health

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"leadscout/internal/resilience/retry"
)

// ringCapacity bounds the recent-error ring.
const ringCapacity = 50

// Engine statuses tracked in the per-engine map.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusUnknown = "unknown"
)

// recordedError is one entry in the recent-error ring.
type recordedError struct {
	Engine  string
	Message string
	Bucket  string
	At      time.Time
}

// EngineStatus is the last observed state of one adapter.
type EngineStatus struct {
	Status    string
	Error     string
	Results   int
	ElapsedMS int64
	LastCheck time.Time
}

// HealthReport is the snapshot returned to the health endpoint and the
// dispatcher's recovery path.
type HealthReport struct {
	TotalRequests   int64
	Success         int64
	Failed          int64
	SuccessRate     float64
	AvgLatencyMS    float64
	Engines         map[string]EngineStatus
	ErrorBuckets    map[string]int
	Recommendations []string
	GeneratedAt     time.Time
}

// Monitor collects request outcomes. It implements the shared HTTP client's
// Recorder interface. Safe for concurrent use.
type Monitor struct {
	mu sync.Mutex

	ring  []recordedError
	start int
	count int

	engines map[string]EngineStatus

	totalRequests int64
	success       int64
	failed        int64
	avgLatencyMS  float64

	lastReset time.Time

	probeURLs []string
}

// NewMonitor creates a Monitor. probeURLs are the known-good URLs hit by the
// synthetic probe; nil selects a sensible default pair.
func NewMonitor(probeURLs []string) *Monitor {
	if len(probeURLs) == 0 {
		probeURLs = []string{
			"https://www.google.com/generate_204",
			"https://www.bing.com/",
		}
	}
	return &Monitor{
		ring:      make([]recordedError, ringCapacity),
		engines:   make(map[string]EngineStatus),
		lastReset: time.Now(),
		probeURLs: probeURLs,
	}
}

// RecordRequest implements the Recorder interface: it folds one request
// outcome into the counters, the running latency mean, and, on failure, the
// error ring.
func (m *Monitor) RecordRequest(engine string, latency time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.maybeResetLocked()

	m.totalRequests++
	latencyMS := float64(latency.Milliseconds())
	// Running mean over all requests since the last daily reset.
	m.avgLatencyMS += (latencyMS - m.avgLatencyMS) / float64(m.totalRequests)

	if err == nil {
		m.success++
		return
	}
	m.failed++
	m.pushErrorLocked(recordedError{
		Engine:  engine,
		Message: err.Error(),
		Bucket:  retry.Classify(err),
		At:      time.Now(),
	})
}

// SetEngineStatus records an adapter run outcome for the status map.
func (m *Monitor) SetEngineStatus(engine string, results int, elapsed time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := EngineStatus{
		Status:    StatusSuccess,
		Results:   results,
		ElapsedMS: elapsed.Milliseconds(),
		LastCheck: time.Now(),
	}
	if err != nil {
		status.Status = StatusFailed
		status.Error = err.Error()
	}
	m.engines[engine] = status
}

// EngineStatuses returns a copy of the per-engine status map.
func (m *Monitor) EngineStatuses() map[string]EngineStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]EngineStatus, len(m.engines))
	for k, v := range m.engines {
		out[k] = v
	}
	return out
}

// pushErrorLocked appends to the FIFO ring, evicting the oldest entry once
// full. Caller holds the lock.
func (m *Monitor) pushErrorLocked(e recordedError) {
	if m.count < ringCapacity {
		m.ring[(m.start+m.count)%ringCapacity] = e
		m.count++
		return
	}
	m.ring[m.start] = e
	m.start = (m.start + 1) % ringCapacity
}

// recentErrorsLocked returns ring contents oldest-first. Caller holds the lock.
func (m *Monitor) recentErrorsLocked() []recordedError {
	out := make([]recordedError, 0, m.count)
	for i := 0; i < m.count; i++ {
		out = append(out, m.ring[(m.start+i)%ringCapacity])
	}
	return out
}

// maybeResetLocked performs the daily counter reset. Caller holds the lock.
func (m *Monitor) maybeResetLocked() {
	if time.Since(m.lastReset) < 24*time.Hour {
		return
	}
	m.totalRequests, m.success, m.failed = 0, 0, 0
	m.avgLatencyMS = 0
	m.start, m.count = 0, 0
	m.lastReset = time.Now()
	slog.Info("health monitor counters reset")
}

// Report builds the current health snapshot.
func (m *Monitor) Report() HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	buckets := map[string]int{}
	for _, e := range m.recentErrorsLocked() {
		buckets[e.Bucket]++
	}

	successRate := 0.0
	if m.totalRequests > 0 {
		successRate = math.Round(float64(m.success)/float64(m.totalRequests)*10000) / 100
	}

	engines := make(map[string]EngineStatus, len(m.engines))
	for k, v := range m.engines {
		engines[k] = v
	}

	return HealthReport{
		TotalRequests:   m.totalRequests,
		Success:         m.success,
		Failed:          m.failed,
		SuccessRate:     successRate,
		AvgLatencyMS:    m.avgLatencyMS,
		Engines:         engines,
		ErrorBuckets:    buckets,
		Recommendations: recommendationsFor(buckets),
		GeneratedAt:     time.Now(),
	}
}

// Recommendation thresholds: a bucket needs this many recent errors before
// its mitigation is suggested.
const recommendThreshold = 3

// Recommendation texts.
const (
	RecommendIncreaseTimeout = "increase timeout"
	RecommendRotateUA        = "rotate UA"
	RecommendReviewURLs      = "review URL generation"
)

func recommendationsFor(buckets map[string]int) []string {
	var recs []string
	if buckets[retry.BucketTimeout] >= recommendThreshold {
		recs = append(recs, RecommendIncreaseTimeout)
	}
	if buckets[retry.BucketBlocked] >= recommendThreshold {
		recs = append(recs, RecommendRotateUA)
	}
	if buckets[retry.BucketNotFound] >= recommendThreshold {
		recs = append(recs, RecommendReviewURLs)
	}
	return recs
}

// ShouldRotateUA reports whether blocked-classified failures have
// accumulated enough to warrant rotating the user agent.
func (m *Monitor) ShouldRotateUA() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	blocked := 0
	for _, e := range m.recentErrorsLocked() {
		if e.Bucket == retry.BucketBlocked {
			blocked++
		}
	}
	return blocked >= recommendThreshold
}

// ProbeInterval is the cadence of the synthetic health probe.
const ProbeInterval = 30 * time.Second

// Prober performs a single outcome-recorded GET; satisfied by the shared
// HTTP client.
type Prober interface {
	Get(ctx context.Context, engine string, rawURL string) ([]byte, error)
}

// UARotator is the mitigation hook applied by AttemptRecovery.
type UARotator interface {
	RotateUserAgent()
}

// RunProbe fetches the known-good URLs once, recording outcomes through the
// normal request path.
func (m *Monitor) RunProbe(ctx context.Context, client Prober) {
	for _, u := range m.probeURLs {
		if _, err := client.Get(ctx, "probe", u); err != nil {
			slog.Warn("synthetic probe failed",
				slog.String("url", u),
				slog.Any("error", err))
		}
	}
}

// StartProbeLoop runs RunProbe every interval until ctx is cancelled.
func (m *Monitor) StartProbeLoop(ctx context.Context, client Prober, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.RunProbe(ctx, client)
			}
		}
	}()
}

// AttemptRecovery applies the currently recommended mitigations and returns
// the actions taken. Only UA rotation is automatable in-process; the other
// recommendations are operator guidance.
func (m *Monitor) AttemptRecovery(rotator UARotator) []string {
	report := m.Report()
	var actions []string
	for _, rec := range report.Recommendations {
		if rec == RecommendRotateUA && rotator != nil {
			rotator.RotateUserAgent()
			actions = append(actions, "rotated user agent")
			slog.Info("recovery action applied", slog.String("action", "rotate user agent"))
		}
	}
	return actions
}
