package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ft-crawler/internal/domain/entity"
	"ft-crawler/internal/repository"
)

// DefaultMaxConsecutiveFailures is the batch abort threshold: more than
// this many persistence failures in a row stop the remaining batch.
const DefaultMaxConsecutiveFailures = 5

// SaveOutcome is the result of a single save attempt.
type SaveOutcome int

const (
	Inserted SaveOutcome = iota
	DuplicateSkipped
	ValidationSkipped
)

func (o SaveOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case DuplicateSkipped:
		return "duplicate_skipped"
	case ValidationSkipped:
		return "validation_skipped"
	default:
		return "unknown"
	}
}

// Store deduplicates and persists extracted articles. Each save is its own
// unit of work; a duplicate or invalid article never aborts its siblings.
type Store struct {
	articles               repository.ArticleRepository
	maxConsecutiveFailures int
}

func NewStore(articles repository.ArticleRepository) *Store {
	return &Store{
		articles:               articles,
		maxConsecutiveFailures: DefaultMaxConsecutiveFailures,
	}
}

// TrySave validates and inserts one article. Validation failures and
// duplicate URLs are reported as outcomes, not errors; the returned error
// is reserved for unexpected persistence failures.
func (s *Store) TrySave(ctx context.Context, article *entity.Article) (SaveOutcome, error) {
	if err := article.Validate(); err != nil {
		slog.Debug("article failed validation, skipping",
			slog.String("url", article.URL),
			slog.Any("error", err))
		return ValidationSkipped, nil
	}

	if err := s.articles.Create(ctx, article); err != nil {
		if errors.Is(err, repository.ErrDuplicateURL) {
			slog.Debug("duplicate article, skipping", slog.String("url", article.URL))
			return DuplicateSkipped, nil
		}
		return 0, fmt.Errorf("save article: %w", err)
	}

	return Inserted, nil
}

// SaveAll saves a batch of articles one by one and returns the inserted
// count. More than the configured threshold of consecutive unexpected
// failures aborts the remaining batch; the partial count is still returned
// together with ErrBatchAborted.
func (s *Store) SaveAll(ctx context.Context, articles []*entity.Article) (int, error) {
	var (
		inserted            int
		consecutiveFailures int
	)

	for _, article := range articles {
		outcome, err := s.TrySave(ctx, article)
		if err != nil {
			consecutiveFailures++
			slog.Warn("article save failed",
				slog.String("url", article.URL),
				slog.Int("consecutive_failures", consecutiveFailures),
				slog.Any("error", err))
			if consecutiveFailures > s.maxConsecutiveFailures {
				return inserted, fmt.Errorf("%w: %d in a row", ErrBatchAborted, consecutiveFailures)
			}
			continue
		}

		consecutiveFailures = 0
		if outcome == Inserted {
			inserted++
		}
	}

	return inserted, nil
}

// IsEmpty reports whether the store holds no articles. The orchestrator
// uses this to pick the first-run bulk mode.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	count, err := s.articles.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count articles: %w", err)
	}
	return count == 0, nil
}
