package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scrapeConfigRows = []string{
	"id", "user_id", "name", "keywords", "sources", "max_results", "industry",
	"location", "extraction_rules", "frequency", "use_ai", "smart_mode",
	"is_active", "last_run_at", "created_at",
}

func TestScrapeConfigRepo_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT(.|\n)+FROM scrape_configs(.|\n)+is_active = TRUE`).
		WillReturnRows(sqlmock.NewRows(scrapeConfigRows).
			AddRow(int64(1), int64(7), "hotel leads", "{hotel,resort}", "{rss}",
				50, "hospitality", "Texas", []byte(`{"budget":"\\$[0-9]+M"}`),
				"daily", true, true, true, nil, now).
			AddRow(int64(2), int64(7), "construction leads", "{construction}", "{}",
				25, "", "", nil, "weekly", false, false, true, &now, now))

	repo := NewScrapeConfigRepo(db)
	configs, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, int64(1), configs[0].ID)
	assert.Equal(t, []string{"hotel", "resort"}, configs[0].Keywords)
	assert.Equal(t, map[string]string{"budget": `\$[0-9]+M`}, configs[0].ExtractionRules)
	assert.True(t, configs[0].UseAI)
	assert.Nil(t, configs[0].LastRunAt)

	assert.Equal(t, "weekly", configs[1].Frequency)
	assert.NotNil(t, configs[1].LastRunAt)
	assert.Empty(t, configs[1].Sources)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScrapeConfigRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT(.|\n)+FROM scrape_configs WHERE id`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(scrapeConfigRows))

	repo := NewScrapeConfigRepo(db)
	cfg, err := repo.Get(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScrapeConfigRepo_MarkRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE scrape_configs SET last_run_at = NOW\(\) WHERE id`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewScrapeConfigRepo(db)
	require.NoError(t, repo.MarkRun(context.Background(), 3))

	assert.NoError(t, mock.ExpectationsWereMet())
}
