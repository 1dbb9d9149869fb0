package db

import (
	"database/sql"
)

// MigrateUp creates the crawler schema. Statements are idempotent so the
// worker can run this on every start.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id           SERIAL PRIMARY KEY,
    url          TEXT NOT NULL UNIQUE,
    title        TEXT NOT NULL,
    content      TEXT NOT NULL,
    author       TEXT,
    subtitle     TEXT,
    image_url    TEXT,
    word_count   INTEGER NOT NULL DEFAULT 0,
    reading_time TEXT,
    published_at TIMESTAMPTZ NOT NULL,
    scraped_at   TIMESTAMPTZ NOT NULL
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS tags (
    id   SERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS article_tags (
    article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    tag_id     INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (article_id, tag_id)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS related_articles (
    id          SERIAL PRIMARY KEY,
    article_id  INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    related_url TEXT NOT NULL
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scrape_runs (
    id               SERIAL PRIMARY KEY,
    run_id           TEXT NOT NULL UNIQUE,
    run_type         VARCHAR(20) NOT NULL,
    found            BIGINT NOT NULL DEFAULT 0,
    scraped          BIGINT NOT NULL DEFAULT 0,
    saved            BIGINT NOT NULL DEFAULT 0,
    skipped          BIGINT NOT NULL DEFAULT 0,
    errors           BIGINT NOT NULL DEFAULT 0,
    started_at       TIMESTAMPTZ NOT NULL,
    duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0
)`); err != nil {
		return err
	}

	indexes := []string{
		// ORDER BY published_at DESC is used by every list query.
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_scraped_at ON articles(scraped_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_related_articles_article_id ON related_articles(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scrape_runs_started_at ON scrape_runs(started_at DESC)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// run_type constraint. Ignore errors when it already exists.
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_run_type'
    ) THEN
        ALTER TABLE scrape_runs ADD CONSTRAINT chk_run_type
        CHECK (run_type IN ('initial', 'incremental'));
    END IF;
END $$;
`)

	return nil
}

// MigrateDown drops the crawler tables in dependency order.
// Use with caution: this deletes all stored data.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS scrape_runs CASCADE`,
		`DROP TABLE IF EXISTS related_articles CASCADE`,
		`DROP TABLE IF EXISTS article_tags CASCADE`,
		`DROP TABLE IF EXISTS tags CASCADE`,
		`DROP TABLE IF EXISTS articles CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
