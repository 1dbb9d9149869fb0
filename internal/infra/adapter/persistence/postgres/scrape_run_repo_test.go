package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"ft-crawler/internal/domain/entity"
	pg "ft-crawler/internal/infra/adapter/persistence/postgres"
)

func TestScrapeRunRepo_Record(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	started := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	run := &entity.ScrapeRun{
		RunID:   "b7f9f6c2-0000-0000-0000-000000000001",
		RunType: entity.RunTypeInitial,
		Found:   10, Scraped: 8, Saved: 7, Skipped: 2, Errors: 1,
		StartedAt: started,
		Duration:  90 * time.Second,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scrape_runs")).
		WithArgs(run.RunID, "initial",
			run.Found, run.Scraped, run.Saved, run.Skipped, run.Errors,
			run.StartedAt, float64(90)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	repo := pg.NewScrapeRunRepo(db)
	if err := repo.Record(context.Background(), run); err != nil {
		t.Fatalf("Record err=%v", err)
	}
	if run.ID != 5 {
		t.Fatalf("expected ID assigned, got %d", run.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestScrapeRunRepo_ListRecent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	started := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "run_id", "run_type", "found", "scraped", "saved",
		"skipped", "errors", "started_at", "duration_seconds",
	}).AddRow(int64(2), "run-2", "incremental", int64(3), int64(3), int64(2),
		int64(1), int64(0), started.Add(time.Hour), 12.5).
		AddRow(int64(1), "run-1", "initial", int64(10), int64(8), int64(7),
			int64(2), int64(1), started, 90.0)

	mock.ExpectQuery(regexp.QuoteMeta("FROM scrape_runs")).
		WithArgs(10).
		WillReturnRows(rows)

	repo := pg.NewScrapeRunRepo(db)
	runs, err := repo.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent err=%v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunType != entity.RunTypeIncremental || runs[1].RunType != entity.RunTypeInitial {
		t.Errorf("unexpected run types: %v, %v", runs[0].RunType, runs[1].RunType)
	}
	if runs[0].Duration != 12500*time.Millisecond {
		t.Errorf("unexpected duration: %v", runs[0].Duration)
	}
}
