// Package scrape contains the job pipeline: dispatching source adapters,
// deduplicating hits, enriching and extracting them, and persisting leads.
package scrape

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"leadscout/internal/domain/entity"
	"leadscout/internal/infra/health"
	"leadscout/internal/infra/source"
	"leadscout/internal/observability/metrics"
	"leadscout/internal/resilience/retry"
)

// minAdapterQuota is the per-adapter result floor: even with many adapters
// enabled, each gets at least this many slots.
const minAdapterQuota = 5

// maxFallbackAdapters bounds how many permissive adapters the fallback
// search consults.
const maxFallbackAdapters = 3

// Dispatcher fans a configuration out across the enabled adapters and
// settles all of them before returning.
type Dispatcher struct {
	registry *source.Registry
	monitor  *health.Monitor
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(registry *source.Registry, monitor *health.Monitor) *Dispatcher {
	return &Dispatcher{registry: registry, monitor: monitor}
}

// Dispatch runs every enabled adapter concurrently and combines their hits.
// Adapter failures are recorded in the health monitor and reported through
// onAdapterDone, never propagated: one bad adapter must not kill the others.
// When every adapter comes back empty, a permissive fallback search runs as
// a last resort.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg *entity.ScrapeConfig, onAdapterDone func(done, total int, engine string)) []entity.RawHit {
	adapters := d.registry.Enabled(cfg)
	if len(adapters) == 0 {
		slog.Warn("no adapters enabled for configuration", slog.Int64("config_id", cfg.ID))
		return nil
	}

	quota := cfg.MaxResults / len(adapters)
	if quota < minAdapterQuota {
		quota = minAdapterQuota
	}

	var mu sync.Mutex
	var hits []entity.RawHit
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range adapters {
		adapter := a
		g.Go(func() error {
			start := time.Now()
			results, err := adapter.Search(gctx, cfg.Keywords, quota)
			elapsed := time.Since(start)

			d.monitor.SetEngineStatus(adapter.Name(), len(results), elapsed, err)
			errorType := ""
			if err != nil {
				errorType = retry.Classify(err)
			}
			metrics.RecordAdapterSearch(adapter.Name(), len(results), elapsed, errorType)
			if err != nil {
				slog.Warn("adapter failed",
					slog.String("engine", adapter.Name()),
					slog.Duration("elapsed", elapsed),
					slog.Any("error", err))
			} else {
				slog.Info("adapter completed",
					slog.String("engine", adapter.Name()),
					slog.Int("results", len(results)),
					slog.Duration("elapsed", elapsed))
			}

			// The callback fires under the lock so completion counts
			// reach the caller in order.
			mu.Lock()
			hits = append(hits, results...)
			done++
			if onAdapterDone != nil {
				onAdapterDone(done, len(adapters), adapter.Name())
			}
			mu.Unlock()
			// Settle-all: adapter errors are attributed, not returned.
			return nil
		})
	}
	_ = g.Wait()

	if len(hits) == 0 {
		hits = d.fallbackSearch(ctx, cfg, quota)
	}
	return hits
}

// fallbackSearch runs the permissive query against the most lenient HTML
// adapters. Best effort only; an empty result here ends the job with zero
// hits, which is not an error.
func (d *Dispatcher) fallbackSearch(ctx context.Context, cfg *entity.ScrapeConfig, quota int) []entity.RawHit {
	fallbacks := d.registry.FallbackAdapters()
	if len(fallbacks) > maxFallbackAdapters {
		fallbacks = fallbacks[:maxFallbackAdapters]
	}
	if len(fallbacks) == 0 {
		return nil
	}

	slog.Info("all adapters returned zero hits, running fallback search",
		slog.Int("fallback_adapters", len(fallbacks)))

	var hits []entity.RawHit
	for _, fs := range fallbacks {
		results, err := fs.FallbackSearch(ctx, cfg.Keywords, quota)
		if err != nil {
			slog.Warn("fallback search failed",
				slog.String("engine", fs.Name()),
				slog.Any("error", err))
			continue
		}
		hits = append(hits, results...)
		if len(hits) >= cfg.MaxResults {
			break
		}
	}
	return hits
}
