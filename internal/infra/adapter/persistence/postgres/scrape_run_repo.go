package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ft-crawler/internal/domain/entity"
	"ft-crawler/internal/repository"
)

type ScrapeRunRepo struct {
	db *sql.DB
}

func NewScrapeRunRepo(db *sql.DB) repository.ScrapeRunRepository {
	return &ScrapeRunRepo{db: db}
}

// Record persists one job run's statistics.
func (repo *ScrapeRunRepo) Record(ctx context.Context, run *entity.ScrapeRun) error {
	const query = `
INSERT INTO scrape_runs
	   (run_id, run_type, found, scraped, saved, skipped, errors, started_at, duration_seconds)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		run.RunID, string(run.RunType),
		run.Found, run.Scraped, run.Saved, run.Skipped, run.Errors,
		run.StartedAt, run.Duration.Seconds(),
	).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	return nil
}

// ListRecent returns the most recent runs, newest first.
func (repo *ScrapeRunRepo) ListRecent(ctx context.Context, limit int) ([]*entity.ScrapeRun, error) {
	const query = `
SELECT id, run_id, run_type, found, scraped, saved, skipped, errors, started_at, duration_seconds
FROM scrape_runs
ORDER BY started_at DESC
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*entity.ScrapeRun, 0, limit)
	for rows.Next() {
		var (
			run     entity.ScrapeRun
			runType string
			seconds float64
		)
		if err := rows.Scan(&run.ID, &run.RunID, &runType,
			&run.Found, &run.Scraped, &run.Saved, &run.Skipped, &run.Errors,
			&run.StartedAt, &seconds); err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		run.RunType = entity.RunType(runType)
		run.Duration = time.Duration(seconds * float64(time.Second))
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
