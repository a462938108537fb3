package craigslist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"craigslist-scraper/config"
	"craigslist-scraper/utils"
)

const indexHTML = `<html><body>
<div class="search-legend">
  <span class="rangeFrom">1</span> - <span class="rangeTo">120</span> / <span class="totalcount">%d</span>
</div>
</body></html>`

const resultsHTML = `<html><body><ul class="rows">
<li class="result-row">
  <a href="https://westernmass.craigslist.org/apa/d/1.html" class="result-image gallery"><span class="result-price">$950</span></a>
  <p class="result-info">
    <time class="result-date" datetime="2021-03-01 10:15">Mar 1</time>
    <a href="https://westernmass.craigslist.org/apa/d/1.html" class="result-title hdrlnk">Room with no hood</a>
  </p>
</li>
<li class="result-row">
  <a href="https://westernmass.craigslist.org/apa/d/2.html" class="result-image gallery"><span class="result-price">$1,250</span></a>
  <p class="result-info">
    <time class="result-date" datetime="2021-03-02 09:00">Mar 2</time>
    <a href="https://westernmass.craigslist.org/apa/d/2.html" class="result-title hdrlnk">Sunny 2br near campus</a>
    <span class="result-meta">
      <span class="result-price">$1,250</span>
      <span class="housing">
        2br -
        900ft2 -
      </span>
      <span class="result-hood"> (Amherst)</span>
    </span>
  </p>
</li>
<li class="result-row">
  <a href="https://westernmass.craigslist.org/apa/d/3.html" class="result-image gallery"><span class="result-price">$700</span></a>
  <p class="result-info">
    <time class="result-date" datetime="2021-03-03 18:45">Mar 3</time>
    <a href="https://westernmass.craigslist.org/apa/d/3.html" class="result-title hdrlnk">Studio downtown</a>
    <span class="result-meta">
      <span class="result-price">$700</span>
      <span class="result-hood"> (Northampton)</span>
    </span>
  </p>
</li>
</ul></body></html>`

const malformedHTML = `<html><body><ul class="rows">
<li class="result-row">
  <a href="/apa/d/9.html" class="result-image gallery"><span class="result-price">call</span></a>
  <p class="result-info">
    <a href="/apa/d/9.html" class="result-title hdrlnk">Ask about price</a>
    <span class="result-hood"> (Holyoke)</span>
  </p>
</li>
<li class="result-row">
  <a href="/apa/d/10.html" class="result-image gallery"><span class="result-price">$800</span></a>
  <p class="result-info">
    <a href="/apa/d/10.html" class="result-title hdrlnk">Priced</a>
    <span class="result-hood"> (Holyoke)</span>
  </p>
</li>
</ul></body></html>`

func newTestParser(skip bool) *Parser {
	return NewParser(config.DefaultSelectors(), skip)
}

func TestPageOffsets(t *testing.T) {
	tests := []struct {
		total int
		want  []int
	}{
		{250, []int{0, 120, 240}},
		{240, []int{0, 120, 240}},
		{0, []int{0}},
		{119, []int{0}},
		{120, []int{0, 120}},
	}

	for _, tt := range tests {
		got := PageOffsets(tt.total, 120)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("PageOffsets(%d, 120) mismatch (-want +got):\n%s", tt.total, diff)
		}
	}
}

func TestTotalCount(t *testing.T) {
	doc, err := Document([]byte(fmt.Sprintf(indexHTML, 2873)))
	require.NoError(t, err)

	total, err := newTestParser(false).TotalCount(doc)
	require.NoError(t, err)
	require.Equal(t, 2873, total)

	empty, err := Document([]byte(`<html><body></body></html>`))
	require.NoError(t, err)
	_, err = newTestParser(false).TotalCount(empty)
	require.Error(t, err)
}

func TestParsePageDropsRowsWithoutNeighborhood(t *testing.T) {
	doc, err := Document([]byte(resultsHTML))
	require.NoError(t, err)

	result, err := newTestParser(false).ParsePage(doc)
	require.NoError(t, err)
	require.Len(t, result.Listings, 2)
	require.Equal(t, 1, result.Filtered)

	first := result.Listings[0]
	require.Equal(t, "2021-03-02 09:00", first.PostedAt)
	require.Equal(t, " (Amherst)", first.Neighborhood)
	require.Equal(t, "Sunny 2br near campus", first.Title)
	require.Equal(t, "https://westernmass.craigslist.org/apa/d/2.html", first.URL)
	require.Equal(t, 1250, first.Price)
	require.NotNil(t, first.Beds)
	require.Equal(t, "2", *first.Beds)
	require.NotNil(t, first.Sqft)
	require.Equal(t, 900, *first.Sqft)

	second := result.Listings[1]
	require.Equal(t, "Studio downtown", second.Title)
	require.Equal(t, 700, second.Price)
	require.Nil(t, second.Beds)
	require.Nil(t, second.Sqft)
}

func TestParsePageMalformedPriceIsFatal(t *testing.T) {
	doc, err := Document([]byte(malformedHTML))
	require.NoError(t, err)

	_, err = newTestParser(false).ParsePage(doc)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParsePageMalformedPriceSkipped(t *testing.T) {
	doc, err := Document([]byte(malformedHTML))
	require.NoError(t, err)

	result, err := newTestParser(true).ParsePage(doc)
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	require.Len(t, result.Skipped, 1)
	require.ErrorIs(t, result.Skipped[0], ErrMalformed)
	require.Equal(t, 800, result.Listings[0].Price)
}

// newSite serves an index reporting total results and answers each page
// offset from pages; offsets not in pages get a 503.
func newSite(t *testing.T, total int, pages map[string]string) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu        sync.Mutex
		requested []string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/apa" || r.URL.Query().Get("hasPic") != "1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		offset := r.URL.Query().Get("s")
		mu.Lock()
		requested = append(requested, offset)
		mu.Unlock()

		if offset == "" {
			fmt.Fprintf(w, indexHTML, total)
			return
		}
		body, ok := pages[offset]
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &requested
}

func newTestScraper(t *testing.T, baseURL string, skip bool, log *bytes.Buffer) (*Scraper, *[]time.Duration) {
	t.Helper()
	cfg := &config.Config{
		Region:      "westernmass",
		BaseURL:     baseURL,
		PageSize:    120,
		MinDelaySec: 1,
		MaxDelaySec: 5,
	}

	var slept []time.Duration
	throttle := utils.NewThrottle(cfg.MinDelaySec, cfg.MaxDelaySec).
		WithSleep(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		})

	fetcher := NewHTTPFetcher("test-agent")
	t.Cleanup(func() { fetcher.Close() })

	s := New(cfg, utils.NewLoggerTo(log), fetcher, newTestParser(skip), throttle)
	return s, &slept
}

func TestScrapeEndToEnd(t *testing.T) {
	srv, requested := newSite(t, 3, map[string]string{"0": resultsHTML})

	var log bytes.Buffer
	s, slept := newTestScraper(t, srv.URL, false, &log)

	listings, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	require.Equal(t, []string{"", "0"}, *requested)
	require.Len(t, *slept, 1, "the first page waits after the index request")

	require.Equal(t, "2", *listings[0].Beds)
	require.Equal(t, 900, *listings[0].Sqft)
	require.Nil(t, listings[1].Beds)
	require.Nil(t, listings[1].Sqft)
}

func TestScrapeSkipsNonOKPages(t *testing.T) {
	srv, requested := newSite(t, 250, map[string]string{"0": resultsHTML, "240": resultsHTML})

	var log bytes.Buffer
	s, slept := newTestScraper(t, srv.URL, false, &log)

	listings, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 4)
	require.Equal(t, []string{"", "0", "120", "240"}, *requested)

	require.Len(t, *slept, 3)
	for _, d := range *slept {
		require.GreaterOrEqual(t, d, time.Second)
		require.LessOrEqual(t, d, 5*time.Second)
	}

	require.True(t, strings.Contains(log.String(), "status code 503"), "missing warning in log:\n%s", log.String())
}

func TestScrapeNegativeTotal(t *testing.T) {
	srv, requested := newSite(t, -1, nil)

	var log bytes.Buffer
	s, slept := newTestScraper(t, srv.URL, false, &log)

	listings, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Empty(t, listings)
	require.Equal(t, []string{""}, *requested)
	require.Empty(t, *slept)
}

func TestScrapeMalformedPriceAborts(t *testing.T) {
	srv, _ := newSite(t, 3, map[string]string{"0": malformedHTML})

	var log bytes.Buffer
	s, _ := newTestScraper(t, srv.URL, false, &log)

	listings, err := s.Scrape(context.Background())
	require.ErrorIs(t, err, ErrMalformed)
	require.Nil(t, listings)
}

func TestScrapeIndexFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var log bytes.Buffer
	s, _ := newTestScraper(t, srv.URL, false, &log)

	_, err := s.Scrape(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status code 403")
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string) (*Page, error) {
	return nil, errors.New("dial tcp: connection reset")
}

func (failingFetcher) Close() error { return nil }

func TestScrapeTransportErrorAborts(t *testing.T) {
	cfg := &config.Config{Region: "westernmass", BaseURL: "https://%s.craigslist.org", PageSize: 120}
	s := New(cfg, utils.NewLoggerTo(&bytes.Buffer{}), failingFetcher{}, newTestParser(false), utils.NewThrottle(0, 0))

	_, err := s.Scrape(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
}

func TestScraperURLs(t *testing.T) {
	cfg := &config.Config{Region: "westernmass", BaseURL: "https://%s.craigslist.org", PageSize: 120}
	s := New(cfg, nil, nil, nil, nil)

	require.Equal(t,
		"https://westernmass.craigslist.org/search/apa?hasPic=1&min_price=&max_price=&availabilityMode=0&sale_date=all+dates",
		s.IndexURL())
	require.Equal(t,
		"https://westernmass.craigslist.org/search/apa?s=240&hasPic=1&availabilityMode=0",
		s.PageURL(240))
}
