// Package repository defines the persistence interfaces consumed by the
// use case layer. Concrete implementations live under internal/infra/adapter.
package repository

import (
	"context"
	"errors"
	"time"

	"ft-crawler/internal/domain/entity"
)

// ErrDuplicateURL is returned by Create when an article with the same URL
// already exists. The unique constraint on articles.url is the dedup
// mechanism for the whole pipeline; callers treat this as a skip, not a
// failure, and it never aborts a surrounding batch.
var ErrDuplicateURL = errors.New("article URL already exists")

// ArticleFilters contains optional filters for article listing.
type ArticleFilters struct {
	From *time.Time // Optional: articles published >= this time
	To   *time.Time // Optional: articles published <= this time
}

type ArticleRepository interface {
	// Create inserts a new article together with its tags and related URLs.
	// Each call is its own transaction. Returns ErrDuplicateURL on a unique
	// constraint violation on url; the article ID is set on success.
	Create(ctx context.Context, article *entity.Article) error
	// Count returns the total number of stored articles.
	Count(ctx context.Context) (int64, error)
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// Get retrieves an article by ID including tags and related URLs.
	// Returns (nil, nil) if the article is not found.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	GetByURL(ctx context.Context, url string) (*entity.Article, error)
	// ListPaginated retrieves articles ordered by published_at DESC using
	// LIMIT and OFFSET. Filters are optional.
	ListPaginated(ctx context.Context, offset, limit int, filters ArticleFilters) ([]*entity.Article, error)
	// CountWithFilters returns the number of articles matching the filters,
	// used for pagination metadata.
	CountWithFilters(ctx context.Context, filters ArticleFilters) (int64, error)
}

// ScrapeRunRepository persists per-job statistics records served by the
// reporting endpoints.
type ScrapeRunRepository interface {
	Record(ctx context.Context, run *entity.ScrapeRun) error
	ListRecent(ctx context.Context, limit int) ([]*entity.ScrapeRun, error)
}
