package craigslist

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Page is the raw result of fetching one results page.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// OK reports whether the site answered with 200.
func (p *Page) OK() bool {
	return p.StatusCode == http.StatusOK
}

// Fetcher retrieves a page. A returned error means the transport failed;
// HTTP level failures are reported through Page.StatusCode.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Close() error
}

// HTTPFetcher performs one plain GET per page.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates a fetcher sending the given user agent.
func NewHTTPFetcher(userAgent string) *HTTPFetcher {
	client := resty.New()
	if userAgent != "" {
		client.SetHeader("user-agent", userAgent)
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return &Page{URL: url, StatusCode: res.StatusCode(), Body: res.Body()}, nil
}

func (f *HTTPFetcher) Close() error {
	return nil
}
