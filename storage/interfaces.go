package storage

import "craigslist-scraper/models"

// ListingWriter is the interface any storage backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// ListingReader loads a stored dataset back for reporting.
type ListingReader interface {
	FetchAll() ([]*models.Listing, error)
}

var (
	_ ListingWriter = (*CSVWriter)(nil)
	_ ListingWriter = (*PostgresWriter)(nil)
	_ ListingReader = (*PostgresWriter)(nil)
)
