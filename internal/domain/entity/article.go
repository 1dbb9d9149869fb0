// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article and TimeWindow, along with
// their validation rules and domain-specific errors.
package entity

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MaxTags is the maximum number of tags stored per article.
	MaxTags = 10

	// MaxRelatedURLs is the maximum number of related article URLs stored per article.
	MaxRelatedURLs = 5

	// wordsPerMinute is the reading speed used to derive ReadingTime.
	wordsPerMinute = 200
)

// Article represents a scraped news article in the system.
// URL is the natural key; the persistence layer enforces its uniqueness.
type Article struct {
	ID          int64
	URL         string
	Title       string
	Content     string
	Author      string
	Subtitle    string
	ImageURL    string
	WordCount   int
	ReadingTime string
	PublishedAt time.Time
	ScrapedAt   time.Time
	Tags        []string
	RelatedURLs []string
}

// DeriveReadingStats computes WordCount and ReadingTime from Content.
// It is called once at extraction time; the values are never recomputed
// after the article has been persisted.
func (a *Article) DeriveReadingStats() {
	a.WordCount = len(strings.Fields(a.Content))
	minutes := a.WordCount / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	a.ReadingTime = fmt.Sprintf("%d min read", minutes)
}

// Validate checks that the article satisfies the persistence requirements:
// a well-formed URL and non-empty title and content within their bounds.
// A failure here is a soft condition for the ingest pipeline (the article
// is skipped, not counted as an error).
func (a *Article) Validate() error {
	if err := ValidateURL(a.URL); err != nil {
		return err
	}
	if err := ValidateTitle(a.Title); err != nil {
		return err
	}
	if strings.TrimSpace(a.Content) == "" {
		return &ValidationError{Field: "content", Message: "content is required"}
	}
	if a.PublishedAt.IsZero() {
		return &ValidationError{Field: "published_at", Message: "published_at is required"}
	}
	return nil
}
