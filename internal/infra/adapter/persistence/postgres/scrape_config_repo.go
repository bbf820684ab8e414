package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"leadscout/internal/domain/entity"
	"leadscout/internal/repository"
)

type ScrapeConfigRepo struct{ db DB }

func NewScrapeConfigRepo(db DB) repository.ScrapeConfigRepository {
	return &ScrapeConfigRepo{db: db}
}

const scrapeConfigColumns = `
id, user_id, name, keywords, sources, max_results, industry, location,
extraction_rules, frequency, use_ai, smart_mode, is_active, last_run_at, created_at`

func (repo *ScrapeConfigRepo) Get(ctx context.Context, id int64) (*entity.ScrapeConfig, error) {
	query := `SELECT ` + scrapeConfigColumns + ` FROM scrape_configs WHERE id = $1 LIMIT 1`
	cfg, err := scanScrapeConfig(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return cfg, nil
}

func (repo *ScrapeConfigRepo) ListActive(ctx context.Context) ([]*entity.ScrapeConfig, error) {
	query := `SELECT ` + scrapeConfigColumns + `
FROM scrape_configs
WHERE is_active = TRUE AND frequency <> 'manual'
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	configs := make([]*entity.ScrapeConfig, 0, 10)
	for rows.Next() {
		cfg, err := scanScrapeConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: %w", err)
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	return configs, nil
}

func (repo *ScrapeConfigRepo) MarkRun(ctx context.Context, configID int64) error {
	const query = `UPDATE scrape_configs SET last_run_at = NOW() WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, configID); err != nil {
		return fmt.Errorf("MarkRun: %w", err)
	}
	return nil
}

func scanScrapeConfig(row rowScanner) (*entity.ScrapeConfig, error) {
	var cfg entity.ScrapeConfig
	var rulesJSON []byte

	err := row.Scan(
		&cfg.ID, &cfg.UserID, &cfg.Name, pq.Array(&cfg.Keywords),
		pq.Array(&cfg.Sources), &cfg.MaxResults, &cfg.Industry, &cfg.Location,
		&rulesJSON, &cfg.Frequency, &cfg.UseAI, &cfg.SmartMode, &cfg.IsActive,
		&cfg.LastRunAt, &cfg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rulesJSON) > 0 {
		if err := json.Unmarshal(rulesJSON, &cfg.ExtractionRules); err != nil {
			return nil, fmt.Errorf("unmarshal extraction_rules: %w", err)
		}
	}
	return &cfg, nil
}
