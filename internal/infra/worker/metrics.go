package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"leadscout/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the scrape worker. It
// embeds the standard ConfigMetrics for configuration monitoring and adds
// metrics for scheduled sweep execution.
//
// Worker-specific metrics:
//   - worker_sweep_runs_total: Total scheduled sweeps by status
//   - worker_sweep_duration_seconds: Duration histogram of sweeps
//   - worker_configs_processed_total: Scrape configurations processed
//   - worker_leads_saved_total: Leads saved across all scheduled runs
//   - worker_last_success_timestamp: Unix timestamp of last successful sweep
type WorkerMetrics struct {
	*config.ConfigMetrics

	// SweepRunsTotal counts scheduled sweeps by status (success, failure).
	SweepRunsTotal *prometheus.CounterVec

	// SweepDurationSeconds measures the duration of one full sweep over
	// the active configurations.
	SweepDurationSeconds prometheus.Histogram

	// ConfigsProcessedTotal counts scrape configurations processed.
	ConfigsProcessedTotal prometheus.Counter

	// LeadsSavedTotal counts leads saved by scheduled runs.
	LeadsSavedTotal prometheus.Counter

	// LastSuccessTimestamp records the Unix time of the last successful sweep.
	LastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates the worker metrics. Registration happens via
// promauto; create at most one instance per process.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		SweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_sweep_runs_total",
			Help: "Total number of scheduled sweeps by status (success/failure)",
		}, []string{"status"}),

		SweepDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_sweep_duration_seconds",
			Help:    "Duration of one scheduled sweep in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		ConfigsProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_configs_processed_total",
			Help: "Total number of scrape configurations processed",
		}),

		LeadsSavedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_leads_saved_total",
			Help: "Total number of leads saved by scheduled runs",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_last_success_timestamp",
			Help: "Unix timestamp of the last successful sweep",
		}),
	}
}

// RecordSweep records one finished sweep. Status should be "success" or
// "failure".
func (m *WorkerMetrics) RecordSweep(status string, seconds float64) {
	m.SweepRunsTotal.WithLabelValues(status).Inc()
	m.SweepDurationSeconds.Observe(seconds)
}

// RecordConfigsProcessed adds processed configurations to the counter.
func (m *WorkerMetrics) RecordConfigsProcessed(count int) {
	m.ConfigsProcessedTotal.Add(float64(count))
}

// RecordLeadsSaved adds saved leads to the counter.
func (m *WorkerMetrics) RecordLeadsSaved(count int) {
	m.LeadsSavedTotal.Add(float64(count))
}

// RecordLastSuccess stamps the last-success gauge with the current time.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
