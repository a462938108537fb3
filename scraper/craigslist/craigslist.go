package craigslist

import (
	"context"
	"fmt"

	"craigslist-scraper/config"
	"craigslist-scraper/models"
	"craigslist-scraper/utils"
)

const (
	indexPath = "/search/apa?hasPic=1&min_price=&max_price=&availabilityMode=0&sale_date=all+dates"
	pagePath  = "/search/apa?s=%d&hasPic=1&availabilityMode=0"
)

// Scraper walks the apartment search results for one region.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	fetcher  Fetcher
	parser   *Parser
	throttle *utils.Throttle
}

// New creates a Scraper. The fetcher is owned by the caller.
func New(cfg *config.Config, logger *utils.Logger, fetcher Fetcher, parser *Parser, throttle *utils.Throttle) *Scraper {
	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		fetcher:  fetcher,
		parser:   parser,
		throttle: throttle,
	}
}

// IndexURL is the first results page, used to learn the total count.
func (s *Scraper) IndexURL() string {
	return s.cfg.SiteURL() + indexPath
}

// PageURL is the results page starting at offset.
func (s *Scraper) PageURL(offset int) string {
	return s.cfg.SiteURL() + fmt.Sprintf(pagePath, offset)
}

// PageOffsets returns 0, pageSize, 2*pageSize, ... up to and including total.
func PageOffsets(total, pageSize int) []int {
	if total < 0 || pageSize <= 0 {
		return nil
	}
	offsets := make([]int, 0, total/pageSize+1)
	for off := 0; off <= total; off += pageSize {
		offsets = append(offsets, off)
	}
	return offsets
}

// Scrape fetches every results page in order and returns the listings found.
// Every page request, the first included, waits on the throttle. A negative
// total yields no pages.
// A page answered with a non-200 status is logged and contributes nothing.
// Transport errors and malformed prices abort the run.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.Listing, error) {
	s.logger.Info("[craigslist] Starting scrape: region %s", s.cfg.Region)

	total, err := s.totalCount(ctx)
	if err != nil {
		return nil, err
	}

	offsets := PageOffsets(total, s.cfg.PageSize)
	s.logger.Info("[craigslist] %d results reported, %d pages to fetch", total, len(offsets))

	listings := make([]*models.Listing, 0, max(total, 0))
	var filtered, skipped int

	for i, offset := range offsets {
		d, err := s.throttle.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("craigslist: throttle: %w", err)
		}
		s.logger.Debug("[craigslist] Slept %v before page %d", d, i+1)

		pageURL := s.PageURL(offset)
		page, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("craigslist: page %d: %w", i+1, err)
		}

		if !page.OK() {
			s.logger.Warn("[craigslist] Request %s: status code %d, skipping page %d", pageURL, page.StatusCode, i+1)
			continue
		}

		doc, err := Document(page.Body)
		if err != nil {
			return nil, fmt.Errorf("craigslist: page %d: %w", i+1, err)
		}

		result, err := s.parser.ParsePage(doc)
		if err != nil {
			return nil, fmt.Errorf("craigslist: page %d: %w", i+1, err)
		}
		for _, e := range result.Skipped {
			s.logger.Warn("[craigslist] Skipping malformed row on page %d: %v", i+1, e)
		}

		listings = append(listings, result.Listings...)
		filtered += result.Filtered
		skipped += len(result.Skipped)

		s.logger.Info("[craigslist] Page %d scraped successfully: %d listings (%d total so far)",
			i+1, len(result.Listings), len(listings))
	}

	s.logger.Info("[craigslist] Scrape complete: %d listings, %d without neighborhood, %d malformed",
		len(listings), filtered, skipped)
	return listings, nil
}

func (s *Scraper) totalCount(ctx context.Context) (int, error) {
	indexURL := s.IndexURL()
	page, err := s.fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return 0, fmt.Errorf("craigslist: index: %w", err)
	}
	if !page.OK() {
		return 0, fmt.Errorf("craigslist: index %s: status code %d", indexURL, page.StatusCode)
	}

	doc, err := Document(page.Body)
	if err != nil {
		return 0, fmt.Errorf("craigslist: index: %w", err)
	}

	total, err := s.parser.TotalCount(doc)
	if err != nil {
		return 0, fmt.Errorf("craigslist: index: %w", err)
	}
	return total, nil
}
