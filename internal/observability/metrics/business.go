package metrics

import (
	"time"
)

// RecordScrapeJob records a finished scrape job with its terminal status.
// Status should be either "completed" or "error".
func RecordScrapeJob(status string, duration time.Duration) {
	ScrapeJobsTotal.WithLabelValues(status).Inc()
	ScrapeJobDuration.Observe(duration.Seconds())
}

// RecordLeadsSaved records leads saved from a source adapter.
func RecordLeadsSaved(engine string, count int) {
	if count > 0 {
		LeadsSavedTotal.WithLabelValues(engine).Add(float64(count))
	}
}

// RecordDuplicates records hits skipped because the user already had them.
func RecordDuplicates(count int) {
	if count > 0 {
		LeadsDuplicateTotal.Add(float64(count))
	}
}

// RecordAdapterSearch records the outcome of one adapter search: result
// count, latency, and the error bucket when it failed.
func RecordAdapterSearch(engine string, results int, duration time.Duration, errorType string) {
	AdapterSearchDuration.WithLabelValues(engine).Observe(duration.Seconds())
	if errorType != "" {
		AdapterErrorsTotal.WithLabelValues(engine, errorType).Inc()
		return
	}
	AdapterResultsTotal.WithLabelValues(engine).Add(float64(results))
}

// RecordLLMCall records one LLM completion attempt.
// Provider is the LLM backend name (e.g. "deepseek", "anthropic").
func RecordLLMCall(provider string, success bool, tokens int) {
	status := "success"
	if !success {
		status = "failure"
	}
	LLMCallsTotal.WithLabelValues(provider, status).Inc()
	if tokens > 0 {
		LLMTokensTotal.WithLabelValues(provider).Add(float64(tokens))
	}
}

// RecordExtraction records the confidence of a finished extraction.
// Method should be "ai" when the LLM contributed, "manual" otherwise.
func RecordExtraction(method string, confidence int) {
	ExtractionConfidence.WithLabelValues(method).Observe(float64(confidence))
}

// RecordContentFetchSuccess records a successful article content fetch.
func RecordContentFetchSuccess(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchFailed records a failed article content fetch.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a fetch skipped because the snippet was
// already sufficient or the URL was not fetchable.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g. "insert_lead", "list_candidates").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
