package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"leadscout/internal/domain/entity"
	"leadscout/internal/repository"
)

type LeadSourceRepo struct{ db DB }

func NewLeadSourceRepo(db DB) repository.LeadSourceRepository {
	return &LeadSourceRepo{db: db}
}

func (repo *LeadSourceRepo) FindOrCreate(ctx context.Context, name, url string) (*entity.LeadSource, error) {
	const selectQuery = `
SELECT id, name, url, type, last_scraped_at, created_at
FROM lead_sources
WHERE name = $1
LIMIT 1`

	src := &entity.LeadSource{}
	var srcType string
	err := repo.db.QueryRowContext(ctx, selectQuery, name).Scan(
		&src.ID, &src.Name, &src.URL, &srcType, &src.LastScrapedAt, &src.CreatedAt,
	)
	if err == nil {
		src.Type = entity.SourceType(srcType)
		return src, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("FindOrCreate: %w", err)
	}

	const insertQuery = `
INSERT INTO lead_sources (name, url, type)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET url = EXCLUDED.url
RETURNING id, name, url, type, last_scraped_at, created_at`

	derived := entity.DeriveSourceType(name, url)
	err = repo.db.QueryRowContext(ctx, insertQuery, name, url, string(derived)).Scan(
		&src.ID, &src.Name, &src.URL, &srcType, &src.LastScrapedAt, &src.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("FindOrCreate: insert: %w", err)
	}
	src.Type = entity.SourceType(srcType)
	return src, nil
}

func (repo *LeadSourceRepo) TouchScrapedAt(ctx context.Context, sourceID int64) error {
	const query = `UPDATE lead_sources SET last_scraped_at = NOW() WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, sourceID); err != nil {
		return fmt.Errorf("TouchScrapedAt: %w", err)
	}
	return nil
}
