package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// CSS selectors for the craigslist search results markup. The site does not
// version its markup, so these are the knobs to turn when extraction breaks.
const (
	DefaultTotalCountSelector   = "div.search-legend span.totalcount"
	DefaultRowSelector          = "li.result-row"
	DefaultNeighborhoodSelector = "span.result-hood"
	DefaultDateSelector         = "time.result-date"
	DefaultDateAttr             = "datetime"
	DefaultTitleSelector        = "a.result-title.hdrlnk"
	DefaultPriceSelector        = "a"
	DefaultHousingSelector      = "span.housing"
)

// Selectors locates each listing field inside a results page.
type Selectors struct {
	TotalCount   string `yaml:"total_count"`
	Row          string `yaml:"row"`
	Neighborhood string `yaml:"neighborhood"`
	Date         string `yaml:"date"`
	DateAttr     string `yaml:"date_attr"`
	Title        string `yaml:"title"`
	// Price is matched against the first element of the row, the way the
	// price badge sits inside the leading image anchor.
	Price   string `yaml:"price"`
	Housing string `yaml:"housing"`
}

// DefaultSelectors returns the selectors matching the current site markup.
func DefaultSelectors() Selectors {
	return Selectors{
		TotalCount:   DefaultTotalCountSelector,
		Row:          DefaultRowSelector,
		Neighborhood: DefaultNeighborhoodSelector,
		Date:         DefaultDateSelector,
		DateAttr:     DefaultDateAttr,
		Title:        DefaultTitleSelector,
		Price:        DefaultPriceSelector,
		Housing:      DefaultHousingSelector,
	}
}

// LoadSelectors returns the defaults overlaid with any non-empty values from
// the YAML file at path. An empty path yields the defaults.
func LoadSelectors(path string) (Selectors, error) {
	sel := DefaultSelectors()
	if path == "" {
		return sel, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return sel, fmt.Errorf("config: open selectors %q: %w", path, err)
	}
	defer f.Close()

	var override Selectors
	if err := yaml.NewDecoder(f).Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		return sel, fmt.Errorf("config: decode selectors %q: %w", path, err)
	}

	merge(&sel.TotalCount, override.TotalCount)
	merge(&sel.Row, override.Row)
	merge(&sel.Neighborhood, override.Neighborhood)
	merge(&sel.Date, override.Date)
	merge(&sel.DateAttr, override.DateAttr)
	merge(&sel.Title, override.Title)
	merge(&sel.Price, override.Price)
	merge(&sel.Housing, override.Housing)
	return sel, nil
}

func merge(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}
