// Package logging builds the slog loggers used across the worker and
// carries them through the call chain.
//
// NewLogger returns the production logger (JSON on stdout, level gated by
// LOG_LEVEL). WithJobID stamps a scrape job id on every line so one job can
// be filtered out of an interleaved sweep, and WithLogger/FromContext move
// a logger through context.Context:
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	jobLogger := logging.WithJobID(logger, jobID)
//	ctx = logging.WithLogger(ctx, jobLogger)
//
//	// further down the pipeline
//	logging.FromContext(ctx).Info("enriching content", slog.String("url", u))
package logging
