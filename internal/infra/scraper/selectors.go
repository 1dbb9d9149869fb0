// Package scraper implements listing and article extraction for news pages.
// Selector lists are ordered by preference so that markup drift on the site
// degrades to the next fallback instead of breaking extraction.
package scraper

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ListingSelectors locates teaser items on a listing page.
type ListingSelectors struct {
	// Containers are tried in order; the first match wins.
	Containers []string `yaml:"containers"`
	// Item selects teaser elements within the matched container.
	Item string `yaml:"item"`
	// PremiumLabel marks teasers for subscriber-only content.
	PremiumLabel string `yaml:"premium_label"`
	// HeadingLinks are tried in order to find the title anchor.
	HeadingLinks []string `yaml:"heading_links"`
	Standfirst   string   `yaml:"standfirst"`
	AuthorLabel  string   `yaml:"author_label"`
	Timestamp    string   `yaml:"timestamp"`
	// TimestampAttr holds the attribute carrying the display date string.
	TimestampAttr string `yaml:"timestamp_attr"`
	// DateLayout is the Go reference layout for the display date string.
	DateLayout string `yaml:"date_layout"`
}

// ArticleSelectors locates fields on an article page. Each list is an
// independent fallback chain; a miss on one field never blocks another.
type ArticleSelectors struct {
	Title       []string `yaml:"title"`
	Body        []string `yaml:"body"`
	Author      []string `yaml:"author"`
	PublishedAt []string `yaml:"published_at"`
	Subtitle    []string `yaml:"subtitle"`
	Image       []string `yaml:"image"`
	Tags        []string `yaml:"tags"`
	Related     []string `yaml:"related"`

	// PaywallSelectors and PaywallPhrases independently signal that the
	// full text is behind a subscription barrier.
	PaywallSelectors []string `yaml:"paywall_selectors"`
	PaywallPhrases   []string `yaml:"paywall_phrases"`

	// TitleSuffix is stripped when falling back to the document title.
	TitleSuffix string `yaml:"title_suffix"`
}

// Selectors bundles the listing and article selector sets.
type Selectors struct {
	Listing ListingSelectors `yaml:"listing"`
	Article ArticleSelectors `yaml:"article"`
}

// DefaultSelectors returns the selector sets used for ft.com markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Listing: ListingSelectors{
			Containers: []string{
				"ul.o-teaser-collection__list",
				".o-teaser-collection",
				"#stream",
			},
			Item:         ".o-teaser",
			PremiumLabel: ".o-labels--premium",
			HeadingLinks: []string{
				".o-teaser__heading a",
				`a[data-trackable="heading-link"]`,
				".js-teaser-heading-link",
			},
			Standfirst:    ".o-teaser__standfirst",
			AuthorLabel:   ".o-teaser__tag",
			Timestamp:     ".o-teaser__timestamp time",
			TimestampAttr: "title",
			DateLayout:    "January 2 2006 3:04 pm",
		},
		Article: ArticleSelectors{
			Title: []string{
				"h1.n-content-header--headline",
				`h1[data-trackable="headline"]`,
				".article-headline h1",
				"h1.o-typography-headline--large",
			},
			Body: []string{
				".n-content-body",
				`[data-trackable="story-body"]`,
				".article-body",
				".o-editorial-typography-body",
			},
			Author: []string{
				`[data-trackable="author"]`,
				".n-content-header--byline a",
				".article-author",
				".byline a",
			},
			PublishedAt: []string{
				"time[datetime]",
				`[data-trackable="timestamp"]`,
				".article-timestamp",
			},
			Subtitle: []string{
				".n-content-header--standfirst",
				`[data-trackable="standfirst"]`,
				".article-subtitle",
				".o-editorial-typography-standfirst",
			},
			Image: []string{
				".n-image img",
				".article-image img",
				".o-editorial-layout-wrapper img",
			},
			Tags: []string{
				`[data-trackable="topic"] a`,
				".article-tags a",
				".topics a",
			},
			Related: []string{
				`.related-articles a[href*="/content/"]`,
				`.recommended-articles a[href*="/content/"]`,
				`.more-on a[href*="/content/"]`,
			},
			PaywallSelectors: []string{
				".barrier-page",
				".subscription-banner",
				`[data-trackable="subscribe-banner"]`,
				".o-banner--subscription",
			},
			PaywallPhrases: []string{
				"Subscribe to read",
				"Premium subscribers only",
				"Try full digital access",
			},
			TitleSuffix: " | Financial Times",
		},
	}
}

// LoadSelectors reads selector overrides from a YAML file and merges them
// over the defaults. An empty path returns the defaults unchanged.
func LoadSelectors(path string) (Selectors, error) {
	sel := DefaultSelectors()
	if path == "" {
		return sel, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Selectors{}, fmt.Errorf("read selectors file: %w", err)
	}

	if err := yaml.Unmarshal(data, &sel); err != nil {
		return Selectors{}, fmt.Errorf("parse selectors file: %w", err)
	}

	return sel, nil
}
