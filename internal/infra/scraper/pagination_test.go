package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ft-crawler/internal/domain/entity"
)

// fakeFetcher serves canned HTML per URL and records fetch order.
type fakeFetcher struct {
	pages   map[string]string
	fetched []string
	err     error
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (string, error) {
	f.fetched = append(f.fetched, pageURL)
	if f.err != nil {
		return "", f.err
	}
	html, ok := f.pages[pageURL]
	if !ok {
		return "<html><body></body></html>", nil
	}
	return html, nil
}

func teaserPage(urls ...string) string {
	page := `<ul class="o-teaser-collection__list">`
	for _, u := range urls {
		page += fmt.Sprintf(`<li class="o-teaser"><div class="o-teaser__heading"><a href="%s">Headline for %s</a></div></li>`, u, u)
	}
	return page + `</ul>`
}

const listingURL = "https://www.ft.com/world"

func newTestWalker(t *testing.T, fetcher Fetcher) *PaginationWalker {
	t.Helper()
	parser := newTestListingParser(t)
	return NewPaginationWalker(fetcher, parser, listingURL, time.Millisecond)
}

func TestWalkerCollectsPagesInOrder(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		listingURL:           teaserPage("/content/a"),
		listingURL + "?page=2": teaserPage("/content/b", "/content/c"),
	}}
	walker := newTestWalker(t, fetcher)

	teasers, err := walker.Walk(context.Background(), 2, nil)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(teasers) != 3 {
		t.Fatalf("expected 3 teasers, got %d", len(teasers))
	}
	want := []string{
		"https://www.ft.com/content/a",
		"https://www.ft.com/content/b",
		"https://www.ft.com/content/c",
	}
	for i, u := range want {
		if teasers[i].URL != u {
			t.Errorf("teaser %d: expected %s, got %s", i, u, teasers[i].URL)
		}
	}

	if fetcher.fetched[0] != listingURL || fetcher.fetched[1] != listingURL+"?page=2" {
		t.Errorf("unexpected fetch order: %v", fetcher.fetched)
	}
}

func TestWalkerStopsAtMaxPages(t *testing.T) {
	pages := make(map[string]string)
	pages[listingURL] = teaserPage("/content/p1")
	for i := 2; i <= 10; i++ {
		pages[fmt.Sprintf("%s?page=%d", listingURL, i)] = teaserPage(fmt.Sprintf("/content/p%d", i))
	}
	fetcher := &fakeFetcher{pages: pages}
	walker := newTestWalker(t, fetcher)

	teasers, err := walker.Walk(context.Background(), 4, nil)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(teasers) != 4 {
		t.Errorf("expected 4 teasers, got %d", len(teasers))
	}
	if len(fetcher.fetched) != 4 {
		t.Errorf("expected 4 pages fetched, got %d", len(fetcher.fetched))
	}
}

func TestWalkerStopsAfterConsecutiveEmptyPages(t *testing.T) {
	// Pages 1-3 have items, pages 4-6 are empty. The walker must stop
	// after page 6 and never fetch page 7.
	pages := map[string]string{
		listingURL:           teaserPage("/content/p1"),
		listingURL + "?page=2": teaserPage("/content/p2"),
		listingURL + "?page=3": teaserPage("/content/p3"),
	}
	fetcher := &fakeFetcher{pages: pages}
	walker := newTestWalker(t, fetcher)

	teasers, err := walker.Walk(context.Background(), 20, nil)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(teasers) != 3 {
		t.Errorf("expected 3 teasers, got %d", len(teasers))
	}
	if len(fetcher.fetched) != 6 {
		t.Errorf("expected to stop after page 6, fetched %d pages: %v", len(fetcher.fetched), fetcher.fetched)
	}
	last := fetcher.fetched[len(fetcher.fetched)-1]
	if last != listingURL+"?page=6" {
		t.Errorf("expected last fetch to be page 6, got %s", last)
	}
}

func TestWalkerEmptyCounterResets(t *testing.T) {
	// Two empty pages, then a page with items, then empty again. The
	// reset means the walker runs to maxPages.
	pages := map[string]string{
		listingURL + "?page=3": teaserPage("/content/p3"),
	}
	fetcher := &fakeFetcher{pages: pages}
	walker := newTestWalker(t, fetcher)

	teasers, err := walker.Walk(context.Background(), 5, nil)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(teasers) != 1 {
		t.Errorf("expected 1 teaser, got %d", len(teasers))
	}
	if len(fetcher.fetched) != 5 {
		t.Errorf("expected 5 pages fetched, got %d", len(fetcher.fetched))
	}
}

func TestWalkerStopsAtWindowBoundary(t *testing.T) {
	recent := time.Now().UTC().Add(-10 * time.Minute).Format("January 2 2006 3:04 pm")
	old := time.Now().UTC().Add(-48 * time.Hour).Format("January 2 2006 3:04 pm")

	page1 := fmt.Sprintf(`<ul class="o-teaser-collection__list">
		<li class="o-teaser">
			<div class="o-teaser__heading"><a href="/content/recent">Recent story</a></div>
			<div class="o-teaser__timestamp"><time title="%s"></time></div>
		</li>
		<li class="o-teaser">
			<div class="o-teaser__heading"><a href="/content/old">Old story</a></div>
			<div class="o-teaser__timestamp"><time title="%s"></time></div>
		</li>
	</ul>`, recent, old)

	fetcher := &fakeFetcher{pages: map[string]string{listingURL: page1}}
	walker := newTestWalker(t, fetcher)

	window := entity.WindowSince(time.Hour)
	teasers, err := walker.Walk(context.Background(), 20, &window)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(teasers) != 1 {
		t.Fatalf("expected 1 teaser within the window, got %d", len(teasers))
	}
	if len(fetcher.fetched) != 1 {
		t.Errorf("expected to stop after the boundary page, fetched %v", fetcher.fetched)
	}
}

func TestWalkerTreatsFetchErrorAsEmptyPage(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("navigation failed")}
	walker := newTestWalker(t, fetcher)

	teasers, err := walker.Walk(context.Background(), 20, nil)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(teasers) != 0 {
		t.Errorf("expected no teasers, got %d", len(teasers))
	}
	if len(fetcher.fetched) != 3 {
		t.Errorf("expected exhaustion after 3 failing pages, fetched %d", len(fetcher.fetched))
	}
}

func TestWalkerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{pages: map[string]string{listingURL: teaserPage("/content/a")}}
	walker := newTestWalker(t, fetcher)

	if _, err := walker.Walk(ctx, 5, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
