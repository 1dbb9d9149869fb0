package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ft-crawler/internal/domain/entity"
	"ft-crawler/internal/observability/metrics"
	"ft-crawler/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

type ArticleRepo struct {
	db           *sql.DB
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
	}
}

// Create inserts the article with its tags and related URLs in one
// transaction. A unique violation on articles.url rolls back and returns
// repository.ErrDuplicateURL so the caller can treat it as a skip.
func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	defer func(start time.Time) { metrics.RecordDBQuery("insert_article", time.Since(start)) }(time.Now())

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Create: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO articles
	   (url, title, content, author, subtitle, image_url, word_count, reading_time, published_at, scraped_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	err = tx.QueryRowContext(ctx, query,
		article.URL, article.Title, article.Content,
		nullString(article.Author), nullString(article.Subtitle), nullString(article.ImageURL),
		article.WordCount, nullString(article.ReadingTime),
		article.PublishedAt, article.ScrapedAt,
	).Scan(&article.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateURL
		}
		return fmt.Errorf("Create: %w", err)
	}

	if err := repo.insertTags(ctx, tx, article.ID, article.Tags); err != nil {
		return err
	}
	if err := repo.insertRelatedURLs(ctx, tx, article.ID, article.RelatedURLs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Create: commit: %w", err)
	}
	return nil
}

// insertTags resolves each tag name to its shared row, creating it when
// missing, and links it to the article.
func (repo *ArticleRepo) insertTags(ctx context.Context, tx *sql.Tx, articleID int64, tags []string) error {
	const upsert = `
INSERT INTO tags (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`
	const link = `INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)`

	for _, tag := range tags {
		var tagID int64
		if err := tx.QueryRowContext(ctx, upsert, tag).Scan(&tagID); err != nil {
			return fmt.Errorf("Create: upsert tag: %w", err)
		}
		if _, err := tx.ExecContext(ctx, link, articleID, tagID); err != nil {
			return fmt.Errorf("Create: link tag: %w", err)
		}
	}
	return nil
}

func (repo *ArticleRepo) insertRelatedURLs(ctx context.Context, tx *sql.Tx, articleID int64, urls []string) error {
	const query = `INSERT INTO related_articles (article_id, related_url) VALUES ($1, $2)`
	for _, u := range urls {
		if _, err := tx.ExecContext(ctx, query, articleID, u); err != nil {
			return fmt.Errorf("Create: insert related URL: %w", err)
		}
	}
	return nil
}

// Count returns the total number of articles in the database.
func (repo *ArticleRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	defer func(start time.Time) { metrics.RecordDBQuery("exists_article", time.Since(start)) }(time.Now())

	const query = `SELECT EXISTS (SELECT 1 FROM articles WHERE url = $1)`
	var existsFlag bool
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&existsFlag); err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return existsFlag, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `
SELECT id, url, title, content, author, subtitle, image_url, word_count, reading_time, published_at, scraped_at
FROM articles
WHERE id = $1
LIMIT 1`
	return repo.getOne(ctx, query, id)
}

func (repo *ArticleRepo) GetByURL(ctx context.Context, url string) (*entity.Article, error) {
	const query = `
SELECT id, url, title, content, author, subtitle, image_url, word_count, reading_time, published_at, scraped_at
FROM articles
WHERE url = $1
LIMIT 1`
	return repo.getOne(ctx, query, url)
}

func (repo *ArticleRepo) getOne(ctx context.Context, query string, arg interface{}) (*entity.Article, error) {
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	if article.Tags, err = repo.tagsFor(ctx, article.ID); err != nil {
		return nil, err
	}
	if article.RelatedURLs, err = repo.relatedURLsFor(ctx, article.ID); err != nil {
		return nil, err
	}
	return article, nil
}

// ListPaginated retrieves articles ordered by published_at DESC. Tags and
// related URLs are not loaded for list views.
func (repo *ArticleRepo) ListPaginated(ctx context.Context, offset, limit int, filters repository.ArticleFilters) ([]*entity.Article, error) {
	defer func(start time.Time) { metrics.RecordDBQuery("select_articles", time.Since(start)) }(time.Now())

	whereClause, args := repo.queryBuilder.BuildWhereClause(filters, "")
	paramIndex := len(args) + 1
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
SELECT id, url, title, content, author, subtitle, image_url, word_count, reading_time, published_at, scraped_at
FROM articles
%s
ORDER BY published_at DESC
LIMIT $%d OFFSET $%d`, whereClause, paramIndex, paramIndex+1)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListPaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPaginated: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// CountWithFilters returns the number of articles matching the filters.
// Uses the same query builder as ListPaginated for consistency.
func (repo *ArticleRepo) CountWithFilters(ctx context.Context, filters repository.ArticleFilters) (int64, error) {
	whereClause, args := repo.queryBuilder.BuildWhereClause(filters, "")
	query := "SELECT COUNT(*) FROM articles " + whereClause

	var count int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountWithFilters: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) tagsFor(ctx context.Context, articleID int64) ([]string, error) {
	const query = `
SELECT t.name
FROM tags t
INNER JOIN article_tags at ON at.tag_id = t.id
WHERE at.article_id = $1
ORDER BY t.name`
	return repo.stringsFor(ctx, query, articleID, "tags")
}

func (repo *ArticleRepo) relatedURLsFor(ctx context.Context, articleID int64) ([]string, error) {
	const query = `
SELECT related_url
FROM related_articles
WHERE article_id = $1
ORDER BY id`
	return repo.stringsFor(ctx, query, articleID, "related URLs")
}

func (repo *ArticleRepo) stringsFor(ctx context.Context, query string, articleID int64, what string) ([]string, error) {
	rows, err := repo.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", what, err)
	}
	defer func() { _ = rows.Close() }()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("load %s: Scan: %w", what, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var (
		article     entity.Article
		author      sql.NullString
		subtitle    sql.NullString
		imageURL    sql.NullString
		readingTime sql.NullString
	)
	err := row.Scan(&article.ID, &article.URL, &article.Title, &article.Content,
		&author, &subtitle, &imageURL, &article.WordCount, &readingTime,
		&article.PublishedAt, &article.ScrapedAt)
	if err != nil {
		return nil, err
	}
	article.Author = author.String
	article.Subtitle = subtitle.String
	article.ImageURL = imageURL.String
	article.ReadingTime = readingTime.String
	return &article, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
