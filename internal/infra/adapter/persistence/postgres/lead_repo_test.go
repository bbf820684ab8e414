package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/domain/entity"
)

func testLead() *entity.Lead {
	return &entity.Lead{
		UserID:           1,
		SourceID:         2,
		Title:            "New hotel announced in Austin",
		URL:              "https://example.com/news/hotel?utm=x",
		Company:          "Summit Development Group",
		Keywords:         []string{"hotel"},
		Status:           entity.StatusNew,
		Priority:         entity.PriorityMedium,
		Confidence:       75,
		ExtractionMethod: entity.ExtractionMethodAI,
		Qualification:    entity.QualificationQualified,
		PublishedAt:      time.Now(),
		ScrapedAt:        time.Now(),
	}
}

func TestLeadRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO leads`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), time.Now()))

	repo := NewLeadRepo(db)
	lead := testLead()
	err = repo.Create(context.Background(), lead, "https://example.com/news/hotel")
	require.NoError(t, err)
	assert.Equal(t, int64(42), lead.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepo_Create_ConflictReturnsDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// ON CONFLICT DO NOTHING yields zero rows from RETURNING.
	mock.ExpectQuery(`INSERT INTO leads`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	repo := NewLeadRepo(db)
	err = repo.Create(context.Background(), testLead(), "https://example.com/news/hotel")
	assert.ErrorIs(t, err, entity.ErrDuplicateLead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepo_ExistsByNormalizedURL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), "https://example.com/a").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewLeadRepo(db)
	exists, err := repo.ExistsByNormalizedURL(context.Background(), 1, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepo_ListCandidates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "title", "normalized_url"}).
		AddRow(int64(1), "New hotel announced in Austin", "https://example.com/a").
		AddRow(int64(2), "New hotel announced downtown", "https://example.com/b")
	mock.ExpectQuery(`SELECT id, title, normalized_url`).
		WithArgs(int64(1), "New hotel announced ", "https://example.com").
		WillReturnRows(rows)

	repo := NewLeadRepo(db)
	candidates, err := repo.ListCandidates(context.Background(), 1, "New hotel announced ", "https://example.com")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "New hotel announced in Austin", candidates[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadSourceRepo_FindOrCreate_Existing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, url, type`).
		WithArgs("NewsAPI").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "type", "last_scraped_at", "created_at"}).
			AddRow(int64(7), "NewsAPI", "https://newsapi.org", "api", nil, time.Now()))

	repo := NewLeadSourceRepo(db)
	src, err := repo.FindOrCreate(context.Background(), "NewsAPI", "https://newsapi.org")
	require.NoError(t, err)
	assert.Equal(t, int64(7), src.ID)
	assert.Equal(t, entity.SourceTypeAPI, src.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadSourceRepo_FindOrCreate_Inserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, url, type`).
		WithArgs("Hotel Feed").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "type", "last_scraped_at", "created_at"}))
	mock.ExpectQuery(`INSERT INTO lead_sources`).
		WithArgs("Hotel Feed", "https://hotels.example/feed", "rss_feed").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "type", "last_scraped_at", "created_at"}).
			AddRow(int64(9), "Hotel Feed", "https://hotels.example/feed", "rss_feed", nil, time.Now()))

	repo := NewLeadSourceRepo(db)
	src, err := repo.FindOrCreate(context.Background(), "Hotel Feed", "https://hotels.example/feed")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceTypeRSSFeed, src.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepo_FindOrCreateByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO tags`).
		WithArgs("hospitality", "industry").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "usage_count", "is_system"}).
			AddRow(int64(3), "hospitality", "industry", int64(5), false))

	repo := NewTagRepo(db)
	tag, err := repo.FindOrCreateByName(context.Background(), "  Hospitality ", entity.TagCategoryIndustry)
	require.NoError(t, err)
	assert.Equal(t, "hospitality", tag.Name)
	assert.Equal(t, int64(5), tag.UsageCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepo_BulkCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO contacts`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	repo := NewContactRepo(db)
	err = repo.BulkCreate(context.Background(), []*entity.Contact{
		{LeadID: 1, UserID: 1, Name: "Jane Smith", Email: "jane@example.com", ContactType: entity.ContactTypePrimary},
		{LeadID: 1, UserID: 1, Phone: "512-555-0134", ContactType: entity.ContactTypeSecondary},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepo_BulkCreate_EmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContactRepo(db)
	require.NoError(t, repo.BulkCreate(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
