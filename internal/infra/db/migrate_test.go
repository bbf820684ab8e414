package db

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUp_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	tableNames := []string{
		"users", "lead_sources", "leads", "contacts", "tags", "lead_tags",
		"columns", "scrape_configs",
	}
	for _, name := range tableNames {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + name).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	indexNames := []string{
		"idx_leads_user_normalized_url",
		"idx_leads_user_created_at",
		"idx_leads_created_at",
		"idx_leads_title_pattern",
		"idx_contacts_lead_id",
		"idx_scrape_configs_active",
	}
	for _, name := range indexNames {
		mock.ExpectExec("CREATE (UNIQUE )?INDEX IF NOT EXISTS " + name).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	// pg_trgm extension and trigram indexes are best effort.
	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS pg_trgm").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_leads_title_gin").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_leads_company_gin").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, MigrateUp(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_TableCreationFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnError(sql.ErrConnDone)

	assert.Error(t, MigrateUp(db))
}

func TestMigrateUp_TrigramIndexFailureIsIgnored(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	tableNames := []string{
		"users", "lead_sources", "leads", "contacts", "tags", "lead_tags",
		"columns", "scrape_configs",
	}
	for _, name := range tableNames {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + name).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for i := 0; i < 6; i++ {
		mock.ExpectExec("CREATE (UNIQUE )?INDEX IF NOT EXISTS").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	// Role without extension privileges: pg_trgm statements fail, the
	// migration still succeeds.
	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS pg_trgm").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_leads_title_gin").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_leads_company_gin").
		WillReturnError(sql.ErrConnDone)

	require.NoError(t, MigrateUp(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateDown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	dropOrder := []string{
		"lead_tags", "contacts", "leads", "tags", "lead_sources", "columns",
		"scrape_configs",
	}
	for _, name := range dropOrder {
		mock.ExpectExec("DROP TABLE IF EXISTS " + name).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, MigrateDown(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
