package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"leadscout/internal/domain/entity"
	"leadscout/internal/repository"
)

type ColumnRepo struct{ db DB }

func NewColumnRepo(db DB) repository.ColumnRepository {
	return &ColumnRepo{db: db}
}

func (repo *ColumnRepo) FindVisibleByUser(ctx context.Context, userID int64) ([]entity.Column, error) {
	const query = `
SELECT id, user_id, field_key, data_type, description, is_visible
FROM columns
WHERE user_id = $1 AND is_visible = TRUE
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("FindVisibleByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := make([]entity.Column, 0, 8)
	for rows.Next() {
		var col entity.Column
		var dataType string
		if err := rows.Scan(&col.ID, &col.UserID, &col.FieldKey, &dataType,
			&col.Description, &col.IsVisible); err != nil {
			return nil, fmt.Errorf("FindVisibleByUser: %w", err)
		}
		col.DataType = entity.ColumnDataType(dataType)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindVisibleByUser: %w", err)
	}
	return columns, nil
}

func (repo *ColumnRepo) CreateDefaults(ctx context.Context, userID int64) ([]entity.Column, error) {
	const query = `
INSERT INTO columns (user_id, field_key, data_type, description, is_visible)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, field_key) DO NOTHING
RETURNING id`

	defaults := entity.DefaultColumns(userID)
	for i := range defaults {
		col := &defaults[i]
		err := repo.db.QueryRowContext(ctx, query,
			col.UserID, col.FieldKey, string(col.DataType), col.Description, col.IsVisible,
		).Scan(&col.ID)
		if err == sql.ErrNoRows {
			// Already seeded by a concurrent job.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("CreateDefaults: %w", err)
		}
	}
	return defaults, nil
}
