package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"craigslist-scraper/models"
)

// Header is the column layout of the listings CSV.
var Header = []string{"date_time", "town", "title", "price", "beds", "sqft", "url"}

// CSVWriter serializes a finished scrape to a CSV file. Nothing touches the
// file until Write is called, so an aborted run leaves no partial output.
type CSVWriter struct {
	path string
}

// NewCSVWriter prepares a writer for path. Intermediate directories are
// created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// Path returns the destination file.
func (c *CSVWriter) Path() string {
	return c.path
}

// Write creates (or truncates) the file and writes the header plus one row per listing.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}

	if err := EncodeCSV(f, listings); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close is a no-op; Write owns the file for its whole lifetime.
func (c *CSVWriter) Close() error {
	return nil
}

// EncodeCSV writes the header and listings to w. Missing beds or sqft are
// written as empty fields.
func EncodeCSV(w io.Writer, listings []*models.Listing) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, l := range listings {
		row := []string{
			l.PostedAt,
			l.Neighborhood,
			l.Title,
			strconv.Itoa(l.Price),
			formatBeds(l.Beds),
			formatSqft(l.Sqft),
			l.URL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatBeds(b *string) string {
	if b == nil {
		return ""
	}
	return *b
}

func formatSqft(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
