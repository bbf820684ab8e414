package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"leadscout/internal/domain/entity"
	"leadscout/internal/infra/enricher"
	"leadscout/internal/infra/extractor"
	"leadscout/internal/infra/progress"
	"leadscout/internal/repository"
)

const (
	// jobDeadline is the soft wall-clock budget for one scrape job.
	jobDeadline = 5 * time.Minute
	// enrichWorkers bounds concurrent article fetches within a job.
	enrichWorkers = 6
)

// Result is the outcome of one scrape job.
type Result struct {
	JobID        string
	TotalResults int
	SavedLeads   int
	Duplicates   int
	LeadIDs      []int64
	Errors       []string
}

// Service orchestrates a full scrape job: validate, dispatch, dedupe,
// enrich, extract, persist, reporting progress at every stage.
type Service struct {
	dispatcher *Dispatcher
	enricher   *enricher.Enricher
	extractor  *extractor.Extractor
	persister  *Persister
	bus        *progress.Bus
	users      repository.UserRepository
	columns    repository.ColumnRepository
}

// NewService creates a Service.
func NewService(
	dispatcher *Dispatcher,
	enr *enricher.Enricher,
	ext *extractor.Extractor,
	persister *Persister,
	bus *progress.Bus,
	users repository.UserRepository,
	columns repository.ColumnRepository,
) *Service {
	return &Service{
		dispatcher: dispatcher,
		enricher:   enr,
		extractor:  ext,
		persister:  persister,
		bus:        bus,
		users:      users,
		columns:    columns,
	}
}

// Run executes one scrape job under a fresh job id. Callers that need to
// observe progress generate the id themselves and use RunJob so they can
// subscribe before the job starts.
func (s *Service) Run(ctx context.Context, cfg *entity.ScrapeConfig) (*Result, error) {
	return s.RunJob(ctx, uuid.NewString(), cfg)
}

// RunJob executes one scrape job for the configuration. Fatal configuration
// problems abort before any network work; per-source and per-item failures
// are collected into the result instead of failing the job. The job emits
// exactly one terminal progress event, completed or error.
func (s *Service) RunJob(ctx context.Context, jobID string, cfg *entity.ScrapeConfig) (*Result, error) {
	result := &Result{JobID: jobID}
	logger := slog.With(slog.String("job_id", jobID), slog.Int64("config_id", cfg.ID))

	ctx, cancel := context.WithTimeout(ctx, jobDeadline)
	defer cancel()

	s.bus.Publish(jobID, progress.StageInitializing, 0, 1, "validating configuration")

	if err := cfg.Validate(); err != nil {
		return s.fail(jobID, result, err)
	}
	exists, err := s.users.Exists(ctx, cfg.UserID)
	if err != nil {
		return s.fail(jobID, result, fmt.Errorf("check user: %w", err))
	}
	if !exists {
		return s.fail(jobID, result, &entity.FatalConfigError{Reason: fmt.Sprintf("unknown user %d", cfg.UserID)})
	}

	columns, err := s.ensureColumns(ctx, cfg.UserID)
	if err != nil {
		return s.fail(jobID, result, fmt.Errorf("ensure columns: %w", err))
	}

	s.bus.Publish(jobID, progress.StageScraping, 0, 1, "searching sources")
	hits := s.dispatcher.Dispatch(ctx, cfg, func(done, total int, engine string) {
		s.bus.Publish(jobID, progress.StageScraping, done, total, engine+" finished")
	})
	hits = validHits(hits)
	hits = Dedupe(hits)
	if len(hits) > cfg.MaxResults {
		hits = hits[:cfg.MaxResults]
	}
	result.TotalResults = len(hits)
	logger.Info("dispatch complete", slog.Int("hits", len(hits)))

	if len(hits) == 0 {
		s.bus.Publish(jobID, progress.StageCompleted, 0, 0, "no results found")
		return result, nil
	}

	items, enrichErrs := s.enrichAndExtract(ctx, jobID, cfg, columns, hits)
	result.Errors = append(result.Errors, enrichErrs...)

	if ctx.Err() != nil {
		result.Errors = append(result.Errors, "job deadline exceeded")
		return s.fail(jobID, result, ctx.Err())
	}

	persisted := s.persister.Persist(ctx, jobID, cfg, columns, items)
	result.SavedLeads = persisted.Saved
	result.Duplicates = persisted.Duplicates
	result.LeadIDs = persisted.LeadIDs
	result.Errors = append(result.Errors, persisted.Errors...)

	s.bus.Publish(jobID, progress.StageCompleted, persisted.Saved, persisted.Saved,
		fmt.Sprintf("saved %d leads, %d duplicates skipped", persisted.Saved, persisted.Duplicates))
	logger.Info("job completed",
		slog.Int("total", result.TotalResults),
		slog.Int("saved", result.SavedLeads),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

// enrichAndExtract runs enrichment and extraction over the hits with a
// bounded worker pool, preserving input order in the output.
func (s *Service) enrichAndExtract(ctx context.Context, jobID string, cfg *entity.ScrapeConfig, columns []entity.Column, hits []entity.RawHit) ([]ExtractedItem, []string) {
	items := make([]ExtractedItem, len(hits))
	var mu sync.Mutex
	var errs []string
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichWorkers)
	for i, hit := range hits {
		i, hit := i, hit
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			enriched := s.enricher.Enrich(gctx, hit)
			data := s.extractor.Extract(gctx, enriched, cfg, columns)
			items[i] = ExtractedItem{Hit: enriched, Data: data}

			// Published under the lock so workers cannot reorder the
			// counter: progress within a stage only moves forward.
			mu.Lock()
			done++
			s.bus.Publish(jobID, progress.StageEnriching, done, len(hits),
				fmt.Sprintf("processed %d of %d results", done, len(hits)))
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.bus.Publish(jobID, progress.StageExtracting, len(hits), len(hits), "extraction complete")

	// Deadline may have cut the pool short; drop the zero-valued tail.
	out := items[:0]
	for _, item := range items {
		if item.Hit.Title != "" {
			out = append(out, item)
		}
	}
	return out, errs
}

// ensureColumns returns the user's visible columns, seeding the defaults on
// first use.
func (s *Service) ensureColumns(ctx context.Context, userID int64) ([]entity.Column, error) {
	columns, err := s.columns.FindVisibleByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		return columns, nil
	}
	return s.columns.CreateDefaults(ctx, userID)
}

// fail records the terminal error event and returns it. Fatal configuration
// errors surface as-is so schedulers can deactivate the configuration.
func (s *Service) fail(jobID string, result *Result, err error) (*Result, error) {
	result.Errors = append(result.Errors, err.Error())
	s.bus.Publish(jobID, progress.StageError, 0, 0, err.Error())
	var fatal *entity.FatalConfigError
	if errors.As(err, &fatal) {
		return result, fatal
	}
	return result, err
}

// validHits drops hits that fail basic validation before dedup.
func validHits(hits []entity.RawHit) []entity.RawHit {
	out := hits[:0]
	for _, h := range hits {
		if err := h.Validate(); err == nil {
			out = append(out, h)
		}
	}
	return out
}
