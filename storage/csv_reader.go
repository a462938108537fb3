package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"craigslist-scraper/models"
)

// ReadCSV loads listings previously written by CSVWriter.
func ReadCSV(path string) ([]*models.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	return DecodeCSV(f)
}

// DecodeCSV reads listings from r. Columns are matched by header name, so
// extra or reordered columns are tolerated. Empty and NaN cells in the
// numeric columns decode as missing.
func DecodeCSV(r io.Reader) ([]*models.Listing, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: empty input")
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range Header {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", name)
		}
	}

	var listings []*models.Listing
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read line %d: %w", line, err)
		}

		price, err := parseNumber(rec[idx["price"]])
		if err != nil || price == nil {
			return nil, fmt.Errorf("csv: line %d: invalid price %q", line, rec[idx["price"]])
		}
		sqft, err := parseNumber(rec[idx["sqft"]])
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: invalid sqft %q", line, rec[idx["sqft"]])
		}

		listings = append(listings, &models.Listing{
			PostedAt:     rec[idx["date_time"]],
			Neighborhood: rec[idx["town"]],
			Title:        rec[idx["title"]],
			URL:          rec[idx["url"]],
			Price:        *price,
			Beds:         parseBeds(rec[idx["beds"]]),
			Sqft:         sqft,
		})
	}

	return listings, nil
}

func isMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}

func parseBeds(s string) *string {
	if isMissing(s) {
		return nil
	}
	s = strings.TrimSpace(s)
	return &s
}

// parseNumber accepts integers and whole floats ("900.0"), which is how
// nullable integer columns come back from dataframe tools.
func parseNumber(s string) (*int, error) {
	if isMissing(s) {
		return nil, nil
	}
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return nil, fmt.Errorf("not a whole number: %q", s)
	}
	n := int(f)
	return &n, nil
}
