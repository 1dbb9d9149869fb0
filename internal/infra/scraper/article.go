package scraper

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"ft-crawler/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// minParagraphLength filters navigation fragments and captions out of the
// extracted body text.
const minParagraphLength = 20

// ArticleParser extracts full article fields from an article page's HTML.
// Each field uses its own selector fallback chain, so a missing optional
// field never blocks extraction of the others.
type ArticleParser struct {
	selectors ArticleSelectors
	baseURL   *url.URL
	now       func() time.Time
}

// NewArticleParser creates a parser resolving relative links against baseURL.
func NewArticleParser(selectors ArticleSelectors, baseURL string) (*ArticleParser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	return &ArticleParser{
		selectors: selectors,
		now:       func() time.Time { return time.Now().UTC() },
		baseURL:   base,
	}, nil
}

// Parse extracts an article from the page HTML. It returns ok=false when the
// page is paywalled or when title or content is empty after extraction; both
// are skips, not errors.
func (p *ArticleParser) Parse(pageURL, html string) (*entity.Article, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false, fmt.Errorf("parse article HTML: %w", err)
	}

	if p.isPaywalled(doc) {
		slog.Debug("paywall detected", slog.String("url", pageURL))
		return nil, false, nil
	}

	article := &entity.Article{
		URL:         pageURL,
		Title:       p.extractTitle(doc),
		Content:     p.extractContent(doc, pageURL, html),
		Author:      p.firstText(doc, p.selectors.Author),
		Subtitle:    p.firstText(doc, p.selectors.Subtitle),
		ImageURL:    p.extractImageURL(doc),
		PublishedAt: p.extractPublishedAt(doc),
		Tags:        p.extractTags(doc),
		RelatedURLs: p.extractRelatedURLs(doc),
		ScrapedAt:   p.now(),
	}

	if article.Title == "" || article.Content == "" {
		slog.Debug("missing required fields after extraction", slog.String("url", pageURL))
		return nil, false, nil
	}

	article.DeriveReadingStats()

	return article, true, nil
}

// isPaywalled checks the known paywall markers and, independently, scans the
// visible body text for subscription prompts.
func (p *ArticleParser) isPaywalled(doc *goquery.Document) bool {
	for _, selector := range p.selectors.PaywallSelectors {
		if doc.Find(selector).Length() > 0 {
			return true
		}
	}

	bodyText := doc.Find("body").Text()
	for _, phrase := range p.selectors.PaywallPhrases {
		if strings.Contains(bodyText, phrase) {
			return true
		}
	}

	return false
}

// extractTitle tries the headline selectors, then falls back to the document
// title with the site suffix stripped.
func (p *ArticleParser) extractTitle(doc *goquery.Document) string {
	if title := p.firstText(doc, p.selectors.Title); title != "" {
		return title
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if p.selectors.TitleSuffix != "" {
		title = strings.TrimSuffix(title, p.selectors.TitleSuffix)
	}
	return title
}

// extractContent locates the body container via selector fallback, strips
// non-content subtrees, and joins paragraphs longer than the noise threshold.
// When no container matches, readability extraction over the full document is
// the last resort.
func (p *ArticleParser) extractContent(doc *goquery.Document, pageURL, html string) string {
	for _, selector := range p.selectors.Body {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}

		container.Find("script, style, aside, nav").Remove()

		var parts []string
		container.Find("p").Each(func(_ int, para *goquery.Selection) {
			text := strings.TrimSpace(para.Text())
			if len(text) >= minParagraphLength {
				parts = append(parts, text)
			}
		})

		if len(parts) == 0 {
			if text := strings.TrimSpace(container.Text()); len(text) >= minParagraphLength {
				parts = append(parts, text)
			}
		}

		if len(parts) > 0 {
			return strings.Join(parts, "\n\n")
		}
	}

	return p.readabilityContent(pageURL, html)
}

// readabilityContent runs generic article extraction when every body
// selector misses.
func (p *ArticleParser) readabilityContent(pageURL, html string) string {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = p.baseURL
	}

	result, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		slog.Debug("readability extraction failed", slog.String("url", pageURL),
			slog.Any("error", err))
		return ""
	}

	var parts []string
	for _, line := range strings.Split(result.TextContent, "\n") {
		text := strings.TrimSpace(line)
		if len(text) >= minParagraphLength {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n")
}

// extractPublishedAt prefers a machine-readable datetime attribute. Malformed
// or missing values fall back to the current time.
func (p *ArticleParser) extractPublishedAt(doc *goquery.Document) time.Time {
	for _, selector := range p.selectors.PublishedAt {
		el := doc.Find(selector).First()
		if el.Length() == 0 {
			continue
		}

		dateStr := strings.TrimSpace(el.AttrOr("datetime", ""))
		if dateStr == "" {
			continue
		}

		// Normalize a bare UTC marker to an explicit offset.
		dateStr = strings.Replace(dateStr, "Z", "+00:00", 1)
		if t, err := time.Parse("2006-01-02T15:04:05.999999999-07:00", dateStr); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse("2006-01-02", dateStr); err == nil {
			return t.UTC()
		}
	}

	return p.now()
}

func (p *ArticleParser) extractImageURL(doc *goquery.Document) string {
	for _, selector := range p.selectors.Image {
		img := doc.Find(selector).First()
		if img.Length() == 0 {
			continue
		}
		src := img.AttrOr("src", "")
		if src == "" {
			src = img.AttrOr("data-src", "")
		}
		if src != "" {
			return p.resolveURL(src)
		}
	}
	return ""
}

// extractTags collects topic labels, deduplicated, capped at MaxTags.
func (p *ArticleParser) extractTags(doc *goquery.Document) []string {
	var tags []string
	seen := make(map[string]struct{})

	for _, selector := range p.selectors.Tags {
		doc.Find(selector).Each(func(_ int, el *goquery.Selection) {
			tag := strings.TrimSpace(el.Text())
			if tag == "" {
				return
			}
			if _, ok := seen[tag]; ok {
				return
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		})
	}

	if len(tags) > entity.MaxTags {
		tags = tags[:entity.MaxTags]
	}
	return tags
}

// extractRelatedURLs collects links to other articles, deduplicated, capped
// at MaxRelatedURLs.
func (p *ArticleParser) extractRelatedURLs(doc *goquery.Document) []string {
	var related []string
	seen := make(map[string]struct{})

	for _, selector := range p.selectors.Related {
		doc.Find(selector).Each(func(_ int, link *goquery.Selection) {
			href := strings.TrimSpace(link.AttrOr("href", ""))
			if href == "" || !isArticleURL(href) {
				return
			}
			full := p.resolveURL(href)
			if _, ok := seen[full]; ok {
				return
			}
			seen[full] = struct{}{}
			related = append(related, full)
		})
	}

	if len(related) > entity.MaxRelatedURLs {
		related = related[:entity.MaxRelatedURLs]
	}
	return related
}

// isArticleURL filters links that do not point at article content, such as
// video, podcast and live-news pages.
func isArticleURL(href string) bool {
	lower := strings.ToLower(href)
	excluded := []string{
		"/video/", "/podcast/", "/live-news/",
		"mailto:", "javascript:", "#",
	}
	for _, pattern := range excluded {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return strings.Contains(lower, "/content/")
}

func (p *ArticleParser) resolveURL(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return p.baseURL.ResolveReference(ref).String()
}

// firstText returns the trimmed text of the first selector that matches a
// non-empty element.
func (p *ArticleParser) firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
