package postgres

import (
	"context"
	"fmt"

	"leadscout/internal/domain/entity"
	"leadscout/internal/repository"
)

type TagRepo struct{ db DB }

func NewTagRepo(db DB) repository.TagRepository {
	return &TagRepo{db: db}
}

func (repo *TagRepo) FindOrCreateByName(ctx context.Context, name string, category entity.TagCategory) (*entity.Tag, error) {
	normalized := entity.NormalizeTagName(name)
	if normalized == "" {
		return nil, &entity.ValidationError{Field: "name", Message: "must not be empty"}
	}

	const query = `
INSERT INTO tags (name, category, usage_count)
VALUES ($1, $2, 1)
ON CONFLICT (name) DO UPDATE SET usage_count = tags.usage_count + 1
RETURNING id, name, category, usage_count, is_system`

	tag := &entity.Tag{}
	var category_ string
	err := repo.db.QueryRowContext(ctx, query, normalized, string(category)).Scan(
		&tag.ID, &tag.Name, &category_, &tag.UsageCount, &tag.IsSystem,
	)
	if err != nil {
		return nil, fmt.Errorf("FindOrCreateByName: %w", err)
	}
	tag.Category = entity.TagCategory(category_)
	return tag, nil
}

func (repo *TagRepo) AttachToLead(ctx context.Context, leadID, tagID int64) error {
	const query = `
INSERT INTO lead_tags (lead_id, tag_id)
VALUES ($1, $2)
ON CONFLICT (lead_id, tag_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, leadID, tagID); err != nil {
		return fmt.Errorf("AttachToLead: %w", err)
	}
	return nil
}
