// Package article provides HTTP handlers for the article read API.
package article

import (
	"time"

	"ft-crawler/internal/domain/entity"
)

// ArticleResponse is the JSON representation of a single article.
type ArticleResponse struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	Author      string    `json:"author"`
	Subtitle    string    `json:"subtitle,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	WordCount   int       `json:"word_count"`
	ReadingTime string    `json:"reading_time"`
	PublishedAt time.Time `json:"published_at"`
	ScrapedAt   time.Time `json:"scraped_at"`
	Tags        []string  `json:"tags"`
	RelatedURLs []string  `json:"related_urls"`
}

// ArticleSummary is the slimmer representation used in list responses.
// Body content is omitted to keep list payloads small.
type ArticleSummary struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Subtitle    string    `json:"subtitle,omitempty"`
	WordCount   int       `json:"word_count"`
	ReadingTime string    `json:"reading_time"`
	PublishedAt time.Time `json:"published_at"`
	Tags        []string  `json:"tags"`
}

// PaginationResponse is the pagination block in list responses.
type PaginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// ListResponse is the JSON body for GET /articles.
type ListResponse struct {
	Data       []ArticleSummary   `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// RunResponse is the JSON representation of a scrape run.
type RunResponse struct {
	RunID     string    `json:"run_id"`
	RunType   string    `json:"run_type"`
	Found     int64     `json:"found"`
	Scraped   int64     `json:"scraped"`
	Saved     int64     `json:"saved"`
	Skipped   int64     `json:"skipped"`
	Errors    int64     `json:"errors"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}

// StatsResponse is the JSON body for GET /stats.
type StatsResponse struct {
	TotalArticles int64         `json:"total_articles"`
	RecentRuns    []RunResponse `json:"recent_runs"`
}

func toArticleResponse(a *entity.Article) ArticleResponse {
	return ArticleResponse{
		ID:          a.ID,
		URL:         a.URL,
		Title:       a.Title,
		Content:     a.Content,
		Author:      a.Author,
		Subtitle:    a.Subtitle,
		ImageURL:    a.ImageURL,
		WordCount:   a.WordCount,
		ReadingTime: a.ReadingTime,
		PublishedAt: a.PublishedAt,
		ScrapedAt:   a.ScrapedAt,
		Tags:        emptyIfNil(a.Tags),
		RelatedURLs: emptyIfNil(a.RelatedURLs),
	}
}

func toArticleSummary(a *entity.Article) ArticleSummary {
	return ArticleSummary{
		ID:          a.ID,
		URL:         a.URL,
		Title:       a.Title,
		Author:      a.Author,
		Subtitle:    a.Subtitle,
		WordCount:   a.WordCount,
		ReadingTime: a.ReadingTime,
		PublishedAt: a.PublishedAt,
		Tags:        emptyIfNil(a.Tags),
	}
}

func toRunResponse(r *entity.ScrapeRun) RunResponse {
	return RunResponse{
		RunID:     r.RunID,
		RunType:   string(r.RunType),
		Found:     r.Found,
		Scraped:   r.Scraped,
		Saved:     r.Saved,
		Skipped:   r.Skipped,
		Errors:    r.Errors,
		StartedAt: r.StartedAt,
		Duration:  r.Duration.String(),
	}
}

// emptyIfNil keeps JSON arrays as [] instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
