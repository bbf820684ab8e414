package db

import (
	"database/sql"
)

// MigrateUp creates the schema if it does not exist. Statements are
// idempotent so the worker can run this on every start.
func MigrateUp(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
    id         SERIAL PRIMARY KEY,
    email      TEXT NOT NULL UNIQUE,
    name       TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE TABLE IF NOT EXISTS lead_sources (
    id              SERIAL PRIMARY KEY,
    name            TEXT NOT NULL UNIQUE,
    url             TEXT,
    type            VARCHAR(20) NOT NULL DEFAULT 'website',
    last_scraped_at TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE TABLE IF NOT EXISTS leads (
    id                SERIAL PRIMARY KEY,
    user_id           INTEGER NOT NULL REFERENCES users(id),
    source_id         INTEGER REFERENCES lead_sources(id),
    title             TEXT NOT NULL,
    description       TEXT,
    url               TEXT NOT NULL,
    normalized_url    TEXT NOT NULL,
    company           TEXT,
    contact_info      JSONB,
    project_type      TEXT,
    location          TEXT,
    budget            TEXT,
    timeline          TEXT,
    industry_type     TEXT,
    keywords          TEXT[],
    status            VARCHAR(20) NOT NULL DEFAULT 'new',
    priority          VARCHAR(20) NOT NULL DEFAULT 'medium',
    custom_fields     JSONB,
    confidence        INTEGER NOT NULL DEFAULT 0,
    extraction_method VARCHAR(20) NOT NULL DEFAULT 'manual',
    score             INTEGER NOT NULL DEFAULT 0,
    qualification     VARCHAR(30) NOT NULL DEFAULT 'unqualified',
    published_at      TIMESTAMPTZ,
    scraped_at        TIMESTAMPTZ,
    notes             TEXT,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE TABLE IF NOT EXISTS contacts (
    id           SERIAL PRIMARY KEY,
    lead_id      INTEGER NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
    user_id      INTEGER NOT NULL REFERENCES users(id),
    name         TEXT,
    title        TEXT,
    email        TEXT,
    phone        TEXT,
    company      TEXT,
    contact_type VARCHAR(20) NOT NULL DEFAULT 'primary',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE TABLE IF NOT EXISTS tags (
    id          SERIAL PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    category    VARCHAR(20) NOT NULL DEFAULT 'custom',
    usage_count INTEGER NOT NULL DEFAULT 0,
    is_system   BOOLEAN NOT NULL DEFAULT FALSE
)`,
		`CREATE TABLE IF NOT EXISTS lead_tags (
    lead_id INTEGER NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
    tag_id  INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (lead_id, tag_id)
)`,
		`CREATE TABLE IF NOT EXISTS columns (
    id          SERIAL PRIMARY KEY,
    user_id     INTEGER NOT NULL REFERENCES users(id),
    field_key   TEXT NOT NULL,
    data_type   VARCHAR(20) NOT NULL DEFAULT 'text',
    description TEXT,
    is_visible  BOOLEAN NOT NULL DEFAULT TRUE,
    UNIQUE (user_id, field_key)
)`,
		`CREATE TABLE IF NOT EXISTS scrape_configs (
    id               SERIAL PRIMARY KEY,
    user_id          INTEGER NOT NULL REFERENCES users(id),
    name             TEXT NOT NULL,
    keywords         TEXT[] NOT NULL,
    sources          TEXT[],
    max_results      INTEGER NOT NULL DEFAULT 50,
    industry         TEXT,
    location         TEXT,
    extraction_rules JSONB,
    frequency        VARCHAR(20) NOT NULL DEFAULT 'manual',
    use_ai           BOOLEAN NOT NULL DEFAULT FALSE,
    smart_mode       BOOLEAN NOT NULL DEFAULT TRUE,
    is_active        BOOLEAN NOT NULL DEFAULT TRUE,
    last_run_at      TIMESTAMPTZ,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	}
	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	indexes := []string{
		// The authoritative duplicate guard; Create relies on this index.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_user_normalized_url ON leads(user_id, normalized_url)`,
		// ListByUser ordering.
		`CREATE INDEX IF NOT EXISTS idx_leads_user_created_at ON leads(user_id, created_at DESC)`,
		// Cross-user recency scans (retention sweeps, admin reporting).
		`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at)`,
		// Candidate lookups use prefix matching on title and normalized_url.
		`CREATE INDEX IF NOT EXISTS idx_leads_title_pattern ON leads(user_id, title text_pattern_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_lead_id ON contacts(lead_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scrape_configs_active ON scrape_configs(is_active) WHERE is_active = TRUE`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Trigram indexes speed up fuzzy title search in the dashboard. Ignored
	// when pg_trgm is unavailable or the role cannot create extensions.
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	trigramIndexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_leads_title_gin ON leads USING gin(title gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_company_gin ON leads USING gin(company gin_trgm_ops)`,
	}
	for _, idx := range trigramIndexes {
		_, _ = db.Exec(idx)
	}

	return nil
}

// MigrateDown drops the lead tables in dependency order. All lead data is
// lost; users survive.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS lead_tags CASCADE`,
		`DROP TABLE IF EXISTS contacts CASCADE`,
		`DROP TABLE IF EXISTS leads CASCADE`,
		`DROP TABLE IF EXISTS tags CASCADE`,
		`DROP TABLE IF EXISTS lead_sources CASCADE`,
		`DROP TABLE IF EXISTS columns CASCADE`,
		`DROP TABLE IF EXISTS scrape_configs CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
