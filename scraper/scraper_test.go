package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickermap/browser"
)

const profilePage = `<html><body>
<header><h1> Apple  Inc </h1></header>
<section>
  <h2>ADDRESS</h2><div>One Apple Park Way
  Cupertino, CA 95014</div>
  <h2>SECTOR</h2><div>Technology</div>
  <h2>INDUSTRY</h2><div>Hardware</div>
  <h2>WEBSITE</h2><div>www.apple.com</div>
</section>
</body></html>`

const blockedPage = `<html><body><h1>Are you a robot?</h1></body></html>`

const notFoundPage = `<html><body><p>The search for "ZZZ:ZZ" produced no matches. Try the symbol search.</p></body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestProfileScraper(t *testing.T) {
	s := &ProfileScraper{}

	got, err := s.Scrape(mustDoc(t, profilePage), "AAPL US")
	require.NoError(t, err)
	assert.Equal(t, Company{
		Reference: "AAPL US",
		Name:      "Apple Inc",
		Address:   "One Apple Park Way Cupertino, CA 95014",
		Sector:    "Technology",
		Industry:  "Hardware",
		Found:     true,
	}, got)

	_, err = s.Scrape(mustDoc(t, blockedPage), "AAPL US")
	assert.ErrorIs(t, err, ErrBlocked)

	got, err = s.Scrape(mustDoc(t, notFoundPage), "ZZZ ZZ")
	require.NoError(t, err)
	assert.Equal(t, Company{Reference: "ZZZ ZZ"}, got)
	assert.False(t, got.Complete())
}

func TestProfileScraper_PartialPage(t *testing.T) {
	got, err := (&ProfileScraper{}).Scrape(mustDoc(t, `<html><body><h2>SECTOR</h2><p>Energy</p></body></html>`), "X LN")

	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.False(t, got.Complete())
	assert.Equal(t, "Energy", got.Sector)
	assert.Empty(t, got.Address)
}

func TestProfileScraper_HeadingLastInWrapper(t *testing.T) {
	page := `<html><body>
<div class="row"><h2>ADDRESS</h2></div><div class="value">1 Main St</div>
<section><div><h2>INDUSTRY</h2></div></section><p>Banks</p>
</body></html>`

	got, err := (&ProfileScraper{}).Scrape(mustDoc(t, page), "X US")

	require.NoError(t, err)
	assert.Equal(t, "1 Main St", got.Address)
	assert.Equal(t, "Banks", got.Industry)
	assert.Empty(t, got.Sector)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\tb   c "))
}

// fakeFetcher serves canned pages keyed by URL and records calls.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	errs    map[string][]error
	calls   []string
	settles []time.Duration
}

func (f *fakeFetcher) FetchHTML(_ context.Context, url string, settle time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	f.settles = append(f.settles, settle)
	if errs := f.errs[url]; len(errs) > 0 {
		f.errs[url] = errs[1:]
		return "", errs[0]
	}
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return page, nil
}

func TestService_ProfileURL(t *testing.T) {
	s := NewService(&fakeFetcher{})

	assert.Equal(t, DefaultBaseURL+"BT/A:LN", s.ProfileURL("BT/A LN"))
	assert.Equal(t, "http://x/AAPL:US", NewService(nil, WithBaseURL("http://x/")).ProfileURL("AAPL US"))
}

func TestService_ScrapeTicker(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"http://x/AAPL:US": profilePage}}
	s := NewService(f, WithBaseURL("http://x/"), WithSettle(time.Second))

	got, err := s.ScrapeTicker(context.Background(), "AAPL US")

	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", got.Name)
	assert.Equal(t, []time.Duration{time.Second}, f.settles)
}

func TestService_RetriesTimeoutOnce(t *testing.T) {
	url := "http://x/AAPL:US"
	timeout := fmt.Errorf("%w: %s", browser.ErrTimeout, url)

	f := &fakeFetcher{
		pages: map[string]string{url: profilePage},
		errs:  map[string][]error{url: {timeout}},
	}
	s := NewService(f, WithBaseURL("http://x/"), WithRetryWait(0))

	got, err := s.ScrapeTicker(context.Background(), "AAPL US")
	require.NoError(t, err)
	assert.True(t, got.Complete())
	assert.Len(t, f.calls, 2)

	f.errs[url] = []error{timeout, timeout}
	_, err = s.ScrapeTicker(context.Background(), "AAPL US")
	assert.ErrorIs(t, err, browser.ErrTimeout)
	assert.Len(t, f.calls, 4)
}

func TestService_Blocked(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"http://x/AAPL:US": blockedPage}}
	s := NewService(f, WithBaseURL("http://x/"))

	_, err := s.ScrapeTicker(context.Background(), "AAPL US")

	assert.ErrorIs(t, err, ErrBlocked)
}

// stubScraper returns per-reference results and counts calls.
type stubScraper struct {
	mu      sync.Mutex
	results map[string]error
	calls   []string
}

func (s *stubScraper) ScrapeTicker(_ context.Context, ref string) (Company, error) {
	s.mu.Lock()
	s.calls = append(s.calls, ref)
	err := s.results[ref]
	s.mu.Unlock()
	if err != nil {
		return Company{}, err
	}
	return Company{Reference: ref, Name: "Co " + ref, Found: true}, nil
}

func TestBatch_StopsWhenBlocked(t *testing.T) {
	s := &stubScraper{results: map[string]error{"B US": fmt.Errorf("scrape B US: %w", ErrBlocked)}}
	var pauses int
	b := NewBatch(s, BatchOptions{Concurrency: 1})
	b.pause = func() time.Duration { pauses++; return 0 }

	res, err := b.Run(context.Background(), []string{"A US", "B US", "C US", "D US"})

	assert.ErrorIs(t, err, ErrBlocked)
	assert.True(t, res.Blocked)
	assert.Equal(t, []string{"A US", "B US"}, s.calls)
	require.Len(t, res.Companies, 1)
	assert.Equal(t, "A US", res.Companies[0].Reference)
	assert.Equal(t, 1, pauses)
}

func TestBatch_CollectsInInputOrder(t *testing.T) {
	s := &stubScraper{results: map[string]error{"C LN": errors.New("connection reset")}}
	var seen []string
	var mu sync.Mutex
	b := NewBatch(s, BatchOptions{
		Concurrency: 4,
		OnResult: func(c Company) {
			mu.Lock()
			seen = append(seen, c.Reference)
			mu.Unlock()
		},
	})
	b.pause = func() time.Duration { return 0 }

	refs := []string{"A US", "B US", "C LN", "D GR", "E FP"}
	res, err := b.Run(context.Background(), refs)

	require.NoError(t, err)
	assert.False(t, res.Blocked)
	assert.Equal(t, []string{"C LN"}, res.Failed)
	require.Len(t, res.Companies, 4)
	for i, want := range []string{"A US", "B US", "D GR", "E FP"} {
		assert.Equal(t, want, res.Companies[i].Reference)
	}
	assert.ElementsMatch(t, []string{"A US", "B US", "D GR", "E FP"}, seen)
}

func TestBatch_RandomPauseWithinBounds(t *testing.T) {
	b := NewBatch(&stubScraper{}, BatchOptions{MinPause: 5 * time.Second, MaxPause: 15 * time.Second})

	for i := 0; i < 100; i++ {
		d := b.pause()
		assert.GreaterOrEqual(t, d, 5*time.Second)
		assert.LessOrEqual(t, d, 15*time.Second)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Company{
		{Reference: "A US", Name: "A", Found: true},
		{Reference: "B HK"},
		{Reference: "C HK", Found: true},
		{Reference: "D LN"},
	})

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Missing)
	assert.Equal(t, map[string]int{"HK": 2, "LN": 1}, s.ByExchange)
	assert.InDelta(t, 75.0, s.Percent(), 1e-9)
	assert.Zero(t, Summary{}.Percent())
}
