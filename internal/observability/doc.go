// Package observability groups the cross-cutting instrumentation used by
// the lead discovery worker.
//
// The logging subpackage configures slog and propagates job-scoped loggers
// through context. The metrics subpackage defines the Prometheus
// instruments the pipeline records into and the worker exposes on
// /metrics.
package observability
