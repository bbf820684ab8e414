// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scrape pipeline metrics track job outcomes end to end
var (
	// ScrapeJobsTotal counts scrape job runs by terminal status
	ScrapeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_jobs_total",
			Help: "Total number of scrape jobs by status",
		},
		[]string{"status"}, // status: completed, error
	)

	// ScrapeJobDuration measures wall-clock duration of scrape jobs
	ScrapeJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scrape_job_duration_seconds",
			Help:    "Scrape job duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// LeadsSavedTotal counts leads saved per source adapter
	LeadsSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_saved_total",
			Help: "Total number of leads saved",
		},
		[]string{"engine"},
	)

	// LeadsDuplicateTotal counts hits skipped as duplicates
	LeadsDuplicateTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_duplicate_total",
			Help: "Total number of hits skipped as duplicates",
		},
	)
)

// Adapter metrics track per-engine search behavior
var (
	// AdapterResultsTotal counts raw hits returned per engine
	AdapterResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapter_results_total",
			Help: "Total number of raw hits returned by source adapters",
		},
		[]string{"engine"},
	)

	// AdapterErrorsTotal counts adapter failures by error bucket
	AdapterErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapter_errors_total",
			Help: "Total number of source adapter errors",
		},
		[]string{"engine", "error_type"},
	)

	// AdapterSearchDuration measures per-engine search latency
	AdapterSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adapter_search_duration_seconds",
			Help:    "Source adapter search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"engine"},
	)
)

// Extraction metrics track pattern and LLM extraction
var (
	// LLMCallsTotal counts LLM completion calls by provider and status
	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Total number of LLM completion calls",
		},
		[]string{"provider", "status"}, // status: success, failure
	)

	// LLMTokensTotal counts tokens consumed by LLM calls
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total number of tokens consumed by LLM calls",
		},
		[]string{"provider"},
	)

	// ExtractionConfidence observes the confidence score of extractions
	ExtractionConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extraction_confidence",
			Help:    "Confidence score distribution of extractions",
			Buckets: []float64{0, 10, 25, 50, 65, 80, 90, 100},
		},
		[]string{"method"}, // method: ai, manual
	)

	// ContentFetchAttemptsTotal counts article fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of article content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
