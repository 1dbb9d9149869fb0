package scraper

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"ft-crawler/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
)

// UnknownAuthor is the sentinel used when a teaser carries no author label.
const UnknownAuthor = "Unknown"

// Teaser is a lightweight listing-page record discovered before full
// article extraction.
type Teaser struct {
	URL         string
	Title       string
	Standfirst  string
	Author      string
	PublishedAt time.Time
}

// ListingParser extracts teasers from a listing page's HTML.
type ListingParser struct {
	selectors ListingSelectors
	baseURL   *url.URL
	now       func() time.Time
}

// NewListingParser creates a parser resolving relative links against baseURL.
func NewListingParser(selectors ListingSelectors, baseURL string) (*ListingParser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	return &ListingParser{
		selectors: selectors,
		now:       func() time.Time { return time.Now().UTC() },
		baseURL:   base,
	}, nil
}

// Parse extracts teasers in page order. Items marked premium, items without
// a heading link, and items outside the time window are dropped.
// The second return value reports whether the last item on the page fell
// outside the window, which callers use as a pagination stop signal.
func (p *ListingParser) Parse(html string, window *entity.TimeWindow) ([]Teaser, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false, fmt.Errorf("parse listing HTML: %w", err)
	}

	container := p.findContainer(doc)
	if container == nil {
		slog.Debug("no listing container matched any selector")
		return nil, false, nil
	}

	var (
		teasers         []Teaser
		boundaryCrossed bool
	)

	container.Find(p.selectors.Item).Each(func(i int, item *goquery.Selection) {
		if p.selectors.PremiumLabel != "" && item.Find(p.selectors.PremiumLabel).Length() > 0 {
			slog.Debug("skipping premium teaser", slog.Int("index", i))
			return
		}

		title, href := p.headingLink(item)
		if title == "" || href == "" {
			slog.Debug("skipping teaser without heading link", slog.Int("index", i))
			return
		}

		teaser := Teaser{
			URL:         p.resolveURL(href),
			Title:       title,
			Standfirst:  strings.TrimSpace(item.Find(p.selectors.Standfirst).Text()),
			Author:      p.authorLabel(item),
			PublishedAt: p.publishedAt(item),
		}

		if window != nil && !window.Contains(teaser.PublishedAt) {
			boundaryCrossed = true
			return
		}
		boundaryCrossed = false

		teasers = append(teasers, teaser)
	})

	return teasers, boundaryCrossed, nil
}

// findContainer tries the container selectors in order, first match wins.
func (p *ListingParser) findContainer(doc *goquery.Document) *goquery.Selection {
	for _, selector := range p.selectors.Containers {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel.First()
		}
	}
	return nil
}

// headingLink returns the teaser title and href from the first matching
// heading link selector.
func (p *ListingParser) headingLink(item *goquery.Selection) (string, string) {
	for _, selector := range p.selectors.HeadingLinks {
		link := item.Find(selector).First()
		if link.Length() == 0 {
			continue
		}
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			continue
		}
		title := strings.TrimSpace(link.Text())
		if title == "" {
			title = strings.TrimSpace(link.AttrOr("title", ""))
		}
		return title, strings.TrimSpace(href)
	}
	return "", ""
}

func (p *ListingParser) authorLabel(item *goquery.Selection) string {
	author := strings.TrimSpace(item.Find(p.selectors.AuthorLabel).First().Text())
	if author == "" {
		return UnknownAuthor
	}
	return author
}

// publishedAt parses the display date from the timestamp element's attribute.
// Parse failures fall back to the current time rather than failing the item.
func (p *ListingParser) publishedAt(item *goquery.Selection) time.Time {
	ts := item.Find(p.selectors.Timestamp).First()
	if ts.Length() == 0 {
		return p.now()
	}

	dateStr := strings.TrimSpace(ts.AttrOr(p.selectors.TimestampAttr, ""))
	if dateStr == "" {
		return p.now()
	}

	t, err := time.Parse(p.selectors.DateLayout, dateStr)
	if err != nil {
		slog.Warn("failed to parse teaser date, using current time",
			slog.String("date_str", dateStr),
			slog.String("layout", p.selectors.DateLayout))
		return p.now()
	}

	return t.UTC()
}

func (p *ListingParser) resolveURL(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return p.baseURL.ResolveReference(ref).String()
}
