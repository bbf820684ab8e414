// Package repository defines the persistence interfaces the scrape pipeline
// depends on. Implementations live under internal/infra/adapter/persistence.
package repository

import (
	"context"

	"leadscout/internal/domain/entity"
)

// LeadCandidate is the slim projection used by the duplicate check.
type LeadCandidate struct {
	ID            int64
	Title         string
	NormalizedURL string
}

type LeadRepository interface {
	// Create inserts the lead and fills in its ID. The leads table carries
	// a unique index on (user_id, normalized_url); an insert that conflicts
	// returns entity.ErrDuplicateLead so concurrent jobs cannot double-save
	// the same URL.
	Create(ctx context.Context, lead *entity.Lead, normalizedURL string) error
	// ExistsByNormalizedURL reports whether the user already has a lead
	// with the exact normalized URL.
	ExistsByNormalizedURL(ctx context.Context, userID int64, normalizedURL string) (bool, error)
	// ListCandidates returns the user's leads whose title shares the given
	// prefix or whose normalized URL starts with urlPrefix, for the
	// similarity stage of duplicate detection.
	ListCandidates(ctx context.Context, userID int64, titlePrefix, urlPrefix string) ([]LeadCandidate, error)
	Get(ctx context.Context, id int64) (*entity.Lead, error)
	// ListByUser returns the user's leads ordered by created_at DESC.
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*entity.Lead, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

type ContactRepository interface {
	// BulkCreate inserts the extracted contacts for a lead in one round trip.
	BulkCreate(ctx context.Context, contacts []*entity.Contact) error
	ListByLead(ctx context.Context, leadID int64) ([]*entity.Contact, error)
}

type TagRepository interface {
	// FindOrCreateByName resolves a tag by its normalized name, creating it
	// with the given category when absent, and bumps its usage count.
	FindOrCreateByName(ctx context.Context, name string, category entity.TagCategory) (*entity.Tag, error)
	// AttachToLead links the tag to the lead; attaching twice is a no-op.
	AttachToLead(ctx context.Context, leadID, tagID int64) error
}

type LeadSourceRepository interface {
	// FindOrCreate resolves a source by name, creating it from the given
	// URL and derived type when absent.
	FindOrCreate(ctx context.Context, name, url string) (*entity.LeadSource, error)
	// TouchScrapedAt stamps last_scraped_at with the current time.
	TouchScrapedAt(ctx context.Context, sourceID int64) error
}

type ColumnRepository interface {
	// FindVisibleByUser returns the user's visible custom columns.
	FindVisibleByUser(ctx context.Context, userID int64) ([]entity.Column, error)
	// CreateDefaults seeds the default column set for a user with none.
	CreateDefaults(ctx context.Context, userID int64) ([]entity.Column, error)
}

type UserRepository interface {
	// Exists reports whether the user id refers to a real user.
	Exists(ctx context.Context, userID int64) (bool, error)
}

type ScrapeConfigRepository interface {
	Get(ctx context.Context, id int64) (*entity.ScrapeConfig, error)
	// ListActive returns configurations eligible for scheduled runs.
	ListActive(ctx context.Context) ([]*entity.ScrapeConfig, error)
	// MarkRun stamps last_run_at after a scheduled run.
	MarkRun(ctx context.Context, configID int64) error
}
