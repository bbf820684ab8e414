// Package metrics holds the Prometheus instruments for the scrape pipeline:
// per-adapter search results and errors, job outcomes and durations,
// duplicate counts, LLM calls and token spend, extraction confidence,
// content fetch outcomes, and database query latency.
//
// Everything registers through promauto into the default registry, so the
// worker only has to mount promhttp.Handler() on /metrics. Recorders are
// plain functions:
//
//	start := time.Now()
//	// ... persist the lead ...
//	metrics.RecordLeadsSaved(engine, 1)
//	metrics.RecordDBQuery("insert", time.Since(start))
package metrics
