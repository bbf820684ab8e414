package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"leadscout/internal/config"
	pgRepo "leadscout/internal/infra/adapter/persistence/postgres"
	"leadscout/internal/infra/db"
	"leadscout/internal/infra/enricher"
	"leadscout/internal/infra/extractor"
	"leadscout/internal/infra/health"
	"leadscout/internal/infra/httpclient"
	"leadscout/internal/infra/progress"
	workerPkg "leadscout/internal/infra/worker"
	"leadscout/internal/observability/logging"
	obsmetrics "leadscout/internal/observability/metrics"
	"leadscout/internal/repository"
	"leadscout/internal/resilience/circuitbreaker"
	"leadscout/internal/usecase/scrape"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("max_concurrent_jobs", workerConfig.MaxConcurrentJobs),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	monitor := health.NewMonitor(nil)
	httpClient := httpclient.New(httpclient.LoadConfigFromEnv(), httpclient.WithRecorder(monitor))
	monitor.StartProbeLoop(ctx, httpClient, health.ProbeInterval)

	service, configRepo := setupScrapeService(logger, database, httpClient, monitor)

	startMetricsServer(ctx, logger, database)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger, monitor)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(ctx, logger, service, configRepo, workerConfig, workerMetrics, healthServer)
}

// initDatabase opens the database connection and applies the schema.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema ready")
	return database
}

// setupScrapeService wires the full scraping pipeline: source registry,
// enricher, extractor, and persister over the Postgres repositories.
func setupScrapeService(
	logger *slog.Logger,
	database *sql.DB,
	httpClient *httpclient.Client,
	monitor *health.Monitor,
) (*scrape.Service, repository.ScrapeConfigRepository) {
	providers := config.LoadProviders()

	registry := providers.BuildRegistry(httpClient)
	logger.Info("source registry initialized", slog.Int("adapters", len(registry.All())))

	usage := &extractor.UsageLog{}
	llmProvider := providers.BuildLLMProvider(usage)
	if llmProvider == nil {
		logger.Info("no extraction model configured, pattern extraction only")
	} else {
		logger.Info("llm extraction available",
			slog.String("provider", providers.LLMProvider),
			slog.Bool("smart_gate", providers.SmartExtraction))
	}

	bus := progress.NewBus()

	// Circuit breaker keeps a dead database from being hammered by every
	// job in a sweep; Instrument adds per-query duration metrics.
	store := pgRepo.Instrument(circuitbreaker.NewDBCircuitBreaker(database))

	persister := scrape.NewPersister(
		pgRepo.NewLeadRepo(store),
		pgRepo.NewContactRepo(store),
		pgRepo.NewTagRepo(store),
		pgRepo.NewLeadSourceRepo(store),
		bus,
	)

	service := scrape.NewService(
		scrape.NewDispatcher(registry, monitor),
		enricher.New(httpClient),
		extractor.New(llmProvider, extractor.WithSmartGate(providers.SmartExtraction)),
		persister,
		bus,
		pgRepo.NewUserRepo(store),
		pgRepo.NewColumnRepo(store),
	)

	return service, pgRepo.NewScrapeConfigRepo(store)
}

// startCronWorker runs scheduled sweeps until ctx is cancelled, then stops
// the scheduler and waits for in-flight jobs.
func startCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	service *scrape.Service,
	configRepo repository.ScrapeConfigRepository,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC",
			slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runSweep(ctx, logger, service, configRepo, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()

	logger.Info("shutdown signal received, stopping scheduler")
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// runSweep executes one scheduled sweep: every active configuration gets a
// scrape job, at most MaxConcurrentJobs in flight. A failing configuration
// is logged and does not stop the sweep.
func runSweep(
	ctx context.Context,
	logger *slog.Logger,
	service *scrape.Service,
	configRepo repository.ScrapeConfigRepository,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
) {
	start := time.Now()
	logger.Info("sweep started")

	configs, err := configRepo.ListActive(ctx)
	if err != nil {
		logger.Error("failed to list active configurations", slog.Any("error", err))
		metrics.RecordSweep("failure", time.Since(start).Seconds())
		return
	}
	if len(configs) == 0 {
		logger.Info("no active configurations")
		metrics.RecordSweep("success", time.Since(start).Seconds())
		metrics.RecordLastSuccess()
		return
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		saved     int
		failed    int
		semaphore = make(chan struct{}, cfg.MaxConcurrentJobs)
	)

	for _, sc := range configs {
		sc := sc
		wg.Add(1)
		semaphore <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-semaphore }()

			jobCtx, cancel := context.WithTimeout(ctx, cfg.JobTimeout)
			defer cancel()

			jobID := uuid.NewString()
			jobStart := time.Now()
			jobLogger := logging.WithJobID(logger, jobID)

			result, err := service.RunJob(jobCtx, jobID, sc)
			if err != nil {
				obsmetrics.RecordScrapeJob("failure", time.Since(jobStart))
				jobLogger.Error("scheduled scrape failed",
					slog.Int64("config_id", sc.ID),
					slog.Any("error", err))
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			obsmetrics.RecordScrapeJob("success", time.Since(jobStart))
			obsmetrics.RecordDuplicates(result.Duplicates)
			jobLogger.Info("scheduled scrape completed",
				slog.Int64("config_id", sc.ID),
				slog.Int("total_results", result.TotalResults),
				slog.Int("saved_leads", result.SavedLeads),
				slog.Int("duplicates", result.Duplicates))

			mu.Lock()
			saved += result.SavedLeads
			mu.Unlock()

			if err := configRepo.MarkRun(ctx, sc.ID); err != nil {
				jobLogger.Warn("failed to mark configuration run",
					slog.Int64("config_id", sc.ID),
					slog.Any("error", err))
			}
		}()
	}
	wg.Wait()

	status := "success"
	if failed == len(configs) {
		status = "failure"
	}
	metrics.RecordSweep(status, time.Since(start).Seconds())
	metrics.RecordConfigsProcessed(len(configs))
	metrics.RecordLeadsSaved(saved)
	if status == "success" {
		metrics.RecordLastSuccess()
	}

	logger.Info("sweep completed",
		slog.Int("configs", len(configs)),
		slog.Int("failed", failed),
		slog.Int("leads_saved", saved),
		slog.Duration("duration", time.Since(start)))
}
