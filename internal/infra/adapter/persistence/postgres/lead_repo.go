// Package postgres implements the repository interfaces over PostgreSQL
// using plain database/sql.
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

type LeadRepo struct{ db DB }

func NewLeadRepo(db DB) repository.LeadRepository {
	return &LeadRepo{db: db}
}

const leadColumns = `
id, user_id, source_id, title, description, url, normalized_url, company,
contact_info, project_type, location, budget, timeline, industry_type,
keywords, status, priority, custom_fields, confidence, extraction_method,
score, qualification, published_at, scraped_at, notes, created_at`

func (repo *LeadRepo) Create(ctx context.Context, lead *entity.Lead, normalizedURL string) error {
	const query = `
INSERT INTO leads (
  user_id, source_id, title, description, url, normalized_url, company,
  contact_info, project_type, location, budget, timeline, industry_type,
  keywords, status, priority, custom_fields, confidence, extraction_method,
  score, qualification, published_at, scraped_at, notes
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
ON CONFLICT (user_id, normalized_url) DO NOTHING
RETURNING id, created_at`

	contactInfo, err := marshalNullable(lead.ContactInfo)
	if err != nil {
		return fmt.Errorf("Create: marshal contact_info: %w", err)
	}
	customFields, err := marshalNullable(lead.CustomFields)
	if err != nil {
		return fmt.Errorf("Create: marshal custom_fields: %w", err)
	}

	err = repo.db.QueryRowContext(ctx, query,
		lead.UserID, lead.SourceID, lead.Title, lead.Description, lead.URL,
		normalizedURL, lead.Company, contactInfo, lead.ProjectType,
		lead.Location, lead.Budget, lead.Timeline, lead.IndustryType,
		pq.Array(lead.Keywords), string(lead.Status), string(lead.Priority),
		customFields, lead.Confidence, lead.ExtractionMethod, lead.Score,
		lead.Qualification, lead.PublishedAt, lead.ScrapedAt, lead.Notes,
	).Scan(&lead.ID, &lead.CreatedAt)
	if err == sql.ErrNoRows {
		// The unique index swallowed the insert: another job got here first.
		return entity.ErrDuplicateLead
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *LeadRepo) ExistsByNormalizedURL(ctx context.Context, userID int64, normalizedURL string) (bool, error) {
	const query = `
SELECT EXISTS(SELECT 1 FROM leads WHERE user_id = $1 AND normalized_url = $2)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, userID, normalizedURL).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByNormalizedURL: %w", err)
	}
	return exists, nil
}

func (repo *LeadRepo) ListCandidates(ctx context.Context, userID int64, titlePrefix, urlPrefix string) ([]repository.LeadCandidate, error) {
	const query = `
SELECT id, title, normalized_url
FROM leads
WHERE user_id = $1
  AND (title LIKE $2 || '%' OR normalized_url LIKE $3 || '%')
LIMIT 100`
	rows, err := repo.db.QueryContext(ctx, query, userID, titlePrefix, urlPrefix)
	if err != nil {
		return nil, fmt.Errorf("ListCandidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]repository.LeadCandidate, 0, 20)
	for rows.Next() {
		var c repository.LeadCandidate
		if err := rows.Scan(&c.ID, &c.Title, &c.NormalizedURL); err != nil {
			return nil, fmt.Errorf("ListCandidates: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCandidates: %w", err)
	}
	return candidates, nil
}

func (repo *LeadRepo) Get(ctx context.Context, id int64) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 LIMIT 1`
	row := repo.db.QueryRowContext(ctx, query, id)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return lead, nil
}

func (repo *LeadRepo) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + `
FROM leads
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := repo.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	leads := make([]*entity.Lead, 0, limit)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByUser: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	return leads, nil
}

func (repo *LeadRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM leads WHERE user_id = $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByUser: %w", err)
	}
	return count, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var normalizedURL string
	var contactInfoJSON, customFieldsJSON []byte
	var status, priority string

	err := row.Scan(
		&lead.ID, &lead.UserID, &lead.SourceID, &lead.Title, &lead.Description,
		&lead.URL, &normalizedURL, &lead.Company, &contactInfoJSON,
		&lead.ProjectType, &lead.Location, &lead.Budget, &lead.Timeline,
		&lead.IndustryType, pq.Array(&lead.Keywords), &status, &priority,
		&customFieldsJSON, &lead.Confidence, &lead.ExtractionMethod,
		&lead.Score, &lead.Qualification, &lead.PublishedAt, &lead.ScrapedAt,
		&lead.Notes, &lead.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.Status = entity.LeadStatus(status)
	lead.Priority = entity.LeadPriority(priority)

	if len(contactInfoJSON) > 0 {
		var info entity.ContactInfo
		if err := json.Unmarshal(contactInfoJSON, &info); err != nil {
			return nil, fmt.Errorf("unmarshal contact_info: %w", err)
		}
		lead.ContactInfo = &info
	}
	if len(customFieldsJSON) > 0 {
		if err := json.Unmarshal(customFieldsJSON, &lead.CustomFields); err != nil {
			return nil, fmt.Errorf("unmarshal custom_fields: %w", err)
		}
	}
	return &lead, nil
}

// marshalNullable JSON-encodes v, mapping nil values to SQL NULL.
func marshalNullable(v any) (any, error) {
	switch val := v.(type) {
	case *entity.ContactInfo:
		if val == nil {
			return nil, nil
		}
	case map[string]any:
		if len(val) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
