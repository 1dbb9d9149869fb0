package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"

	"ft-crawler/internal/domain/entity"
	pg "ft-crawler/internal/infra/adapter/persistence/postgres"
	"ft-crawler/internal/repository"
)

/* ─────────────────────────── helpers ─────────────────────────── */

func artRow(a *entity.Article) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "url", "title", "content", "author", "subtitle",
		"image_url", "word_count", "reading_time", "published_at", "scraped_at",
	}).AddRow(
		a.ID, a.URL, a.Title, a.Content, a.Author, a.Subtitle,
		a.ImageURL, a.WordCount, a.ReadingTime, a.PublishedAt, a.ScrapedAt,
	)
}

func emptyArticleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "url", "title", "content", "author", "subtitle",
		"image_url", "word_count", "reading_time", "published_at", "scraped_at",
	})
}

func testArticle(now time.Time) *entity.Article {
	return &entity.Article{
		ID: 1, URL: "https://www.ft.com/content/abc",
		Title: "Markets rally", Content: "Body text",
		Author: "Jane Smith", Subtitle: "Standfirst",
		ImageURL: "https://www.ft.com/img.jpg", WordCount: 2,
		ReadingTime: "1 min read", PublishedAt: now, ScrapedAt: now,
	}
}

/* ─────────────────────────── 1. Create ─────────────────────────── */

func TestArticleRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	article := testArticle(now)
	article.ID = 0
	article.Tags = []string{"Monetary policy"}
	article.RelatedURLs = []string{"https://www.ft.com/content/rel-1"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WithArgs(article.URL, article.Title, article.Content,
			article.Author, article.Subtitle, article.ImageURL,
			article.WordCount, article.ReadingTime,
			article.PublishedAt, article.ScrapedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tags")).
		WithArgs("Monetary policy").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO article_tags")).
		WithArgs(int64(7), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO related_articles")).
		WithArgs(int64(7), "https://www.ft.com/content/rel-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := pg.NewArticleRepo(db)
	if err := repo.Create(context.Background(), article); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if article.ID != 7 {
		t.Fatalf("expected ID assigned, got %d", article.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_CreateDuplicateURL(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	article := testArticle(now)
	article.ID = 0

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "articles_url_key"})
	mock.ExpectRollback()

	repo := pg.NewArticleRepo(db)
	err := repo.Create(context.Background(), article)
	if !errors.Is(err, repository.ErrDuplicateURL) {
		t.Fatalf("expected ErrDuplicateURL, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 2. Get ─────────────────────────── */

func TestArticleRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	want := testArticle(now)
	want.Tags = []string{"Inflation"}
	want.RelatedURLs = []string{"https://www.ft.com/content/rel-1"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs(int64(1)).
		WillReturnRows(artRow(want))
	mock.ExpectQuery(regexp.QuoteMeta("FROM tags")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Inflation"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM related_articles")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"related_url"}).AddRow("https://www.ft.com/content/rel-1"))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_GetNotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	// An empty result set maps to (nil, nil).
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs(int64(99)).
		WillReturnRows(emptyArticleRows())

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 99)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing article, got %+v", got)
	}
}

/* ─────────────────────────── 3. Count / Exists ─────────────────────────── */

func TestArticleRepo_Count(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	repo := pg.NewArticleRepo(db)
	count, err := repo.Count(context.Background())
	if err != nil || count != 42 {
		t.Fatalf("Count=%d err=%v", count, err)
	}
}

func TestArticleRepo_ExistsByURL(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("https://www.ft.com/content/abc").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := pg.NewArticleRepo(db)
	exists, err := repo.ExistsByURL(context.Background(), "https://www.ft.com/content/abc")
	if err != nil || !exists {
		t.Fatalf("ExistsByURL=%v err=%v", exists, err)
	}
}

/* ─────────────────────────── 4. ListPaginated ─────────────────────────── */

func TestArticleRepo_ListPaginated(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	mock.ExpectQuery("FROM articles").
		WithArgs(20, 0).
		WillReturnRows(artRow(testArticle(now)))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListPaginated(context.Background(), 0, 20, repository.ArticleFilters{})
	if err != nil || len(got) != 1 {
		t.Fatalf("ListPaginated err=%v len=%d", err, len(got))
	}
}

func TestArticleRepo_ListPaginatedWithFilters(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	from := now.Add(-24 * time.Hour)
	to := now

	mock.ExpectQuery("WHERE published_at").
		WithArgs(from, to, 10, 5).
		WillReturnRows(artRow(testArticle(now)))

	repo := pg.NewArticleRepo(db)
	filters := repository.ArticleFilters{From: &from, To: &to}
	got, err := repo.ListPaginated(context.Background(), 5, 10, filters)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListPaginated err=%v len=%d", err, len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_CountWithFilters(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	from := time.Now().UTC().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles WHERE published_at >= $1")).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	repo := pg.NewArticleRepo(db)
	count, err := repo.CountWithFilters(context.Background(), repository.ArticleFilters{From: &from})
	if err != nil || count != 3 {
		t.Fatalf("CountWithFilters=%d err=%v", count, err)
	}
}
