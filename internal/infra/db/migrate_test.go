package db

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMigrateUpExecutesAllStatements(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = mockDB.Close() }()

	// Tables in creation order, then indexes, then the constraint block.
	for _, fragment := range []string{
		"CREATE TABLE IF NOT EXISTS articles",
		"CREATE TABLE IF NOT EXISTS tags",
		"CREATE TABLE IF NOT EXISTS article_tags",
		"CREATE TABLE IF NOT EXISTS related_articles",
		"CREATE TABLE IF NOT EXISTS scrape_runs",
		"idx_articles_published_at",
		"idx_articles_scraped_at",
		"idx_related_articles_article_id",
		"idx_scrape_runs_started_at",
		"chk_run_type",
	} {
		mock.ExpectExec(fragment).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := MigrateUp(mockDB); err != nil {
		t.Fatalf("MigrateUp err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateUpStopsOnTableError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = mockDB.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS articles").
		WillReturnError(errors.New("permission denied"))

	if err := MigrateUp(mockDB); err == nil {
		t.Fatal("expected error from failing statement")
	}
}

func TestMigrateDownDropsInDependencyOrder(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = mockDB.Close() }()

	for _, table := range []string{
		"scrape_runs", "related_articles", "article_tags", "tags", "articles",
	} {
		mock.ExpectExec("DROP TABLE IF EXISTS " + table).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := MigrateDown(mockDB); err != nil {
		t.Fatalf("MigrateDown err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
