package article

import (
	"context"
	"fmt"

	"ft-crawler/internal/common/pagination"
	"ft-crawler/internal/domain/entity"
	"ft-crawler/internal/repository"
)

// Service provides read access to scraped articles and run statistics.
// Persistence is delegated to the repositories.
type Service struct {
	Articles repository.ArticleRepository
	Runs     repository.ScrapeRunRepository
}

// PaginatedResult is the result of a paginated article query:
// one page of data plus the pagination metadata.
type PaginatedResult struct {
	Data       []*entity.Article
	Pagination pagination.Metadata
}

// Stats summarizes the state of the store and the most recent runs.
type Stats struct {
	TotalArticles int64
	RecentRuns    []*entity.ScrapeRun
}

// ListPaginated retrieves one page of articles ordered by publish time,
// newest first, optionally restricted to a published_at range.
func (s *Service) ListPaginated(ctx context.Context, params pagination.Params, filters repository.ArticleFilters) (*PaginatedResult, error) {
	offset := pagination.CalculateOffset(params.Page, params.Limit)

	total, err := s.Articles.CountWithFilters(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	articles, err := s.Articles.ListPaginated(ctx, offset, params.Limit, filters)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return &PaginatedResult{
		Data: articles,
		Pagination: pagination.Metadata{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: pagination.CalculateTotalPages(total, params.Limit),
		},
	}, nil
}

// Get retrieves a single article by its ID, including tags and related
// URLs. Returns ErrInvalidArticleID for non-positive IDs and
// ErrArticleNotFound when no article matches.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	article, err := s.Articles.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// GetStats returns the total article count and the most recent scrape
// runs, newest first. runLimit bounds how many runs are returned; zero or
// negative means the default of 10.
func (s *Service) GetStats(ctx context.Context, runLimit int) (*Stats, error) {
	if runLimit <= 0 {
		runLimit = 10
	}

	total, err := s.Articles.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	runs, err := s.Runs.ListRecent(ctx, runLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}

	return &Stats{
		TotalArticles: total,
		RecentRuns:    runs,
	}, nil
}
