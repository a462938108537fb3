package craigslist

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"craigslist-scraper/config"
	"craigslist-scraper/models"
)

// PageResult is what one results page yielded.
type PageResult struct {
	Listings []*models.Listing
	// Filtered counts rows dropped for lacking a neighborhood marker.
	Filtered int
	// Skipped holds malformed rows dropped when skipping is enabled.
	Skipped []error
}

// Parser extracts listings from results page markup.
type Parser struct {
	sel           config.Selectors
	skipMalformed bool
}

// NewParser creates a Parser. With skipMalformed false the first malformed
// price or square footage aborts parsing.
func NewParser(sel config.Selectors, skipMalformed bool) *Parser {
	return &Parser{sel: sel, skipMalformed: skipMalformed}
}

// Document parses raw markup.
func Document(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// TotalCount reads the number of results the index page reports.
func (p *Parser) TotalCount(doc *goquery.Document) (int, error) {
	node := doc.Find(p.sel.TotalCount).First()
	if node.Length() == 0 {
		return 0, fmt.Errorf("total count: no element matches %q", p.sel.TotalCount)
	}
	raw := strings.TrimSpace(node.Text())
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: total count %q", ErrMalformed, raw)
	}
	return n, nil
}

// ParsePage extracts every listing on the page that carries a neighborhood.
func (p *Parser) ParsePage(doc *goquery.Document) (*PageResult, error) {
	result := &PageResult{}

	var fatal error
	doc.Find(p.sel.Row).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if row.Find(p.sel.Neighborhood).Length() == 0 {
			result.Filtered++
			return true
		}

		listing, err := p.parseRow(row)
		if err != nil {
			if !p.skipMalformed {
				fatal = err
				return false
			}
			result.Skipped = append(result.Skipped, err)
			return true
		}

		result.Listings = append(result.Listings, listing)
		return true
	})

	if fatal != nil {
		return nil, fatal
	}
	return result, nil
}

func (p *Parser) parseRow(row *goquery.Selection) (*models.Listing, error) {
	title := row.Find(p.sel.Title).First()
	href, _ := title.Attr("href")
	postedAt, _ := row.Find(p.sel.Date).First().Attr(p.sel.DateAttr)

	listing := &models.Listing{
		PostedAt:     postedAt,
		Neighborhood: row.Find(p.sel.Neighborhood).First().Text(),
		Title:        title.Text(),
		URL:          href,
	}

	price, err := ParsePrice(row.Find(p.sel.Price).First().Text())
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", listing.Title, err)
	}
	listing.Price = price

	housing := row.Find(p.sel.Housing).First()
	beds, sqft, err := NormalizeHousing(housing.Text(), housing.Length() > 0)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", listing.Title, err)
	}
	listing.Beds = beds
	listing.Sqft = sqft

	return listing, nil
}
