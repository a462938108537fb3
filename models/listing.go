package models

// Listing is one apartment post extracted from a search results page.
// Beds and Sqft are nil when the post does not carry them.
type Listing struct {
	PostedAt     string
	Neighborhood string
	Title        string
	URL          string
	Price        int
	// Beds is kept as the raw token from the housing fragment ("2", "3").
	Beds *string
	Sqft *int
}

// HasPlotFields reports whether the listing can be placed on the price/sqft chart.
func (l *Listing) HasPlotFields() bool {
	return l.Beds != nil && l.Sqft != nil
}

// BedroomGroup aggregates listings sharing the same bedroom token.
type BedroomGroup struct {
	Beds         string
	Count        int
	AveragePrice float64
	AverageSqft  float64
	PricePerSqft float64
	MinPrice     int
	MaxPrice     int
}

// Report holds the summary computed over a deduplicated dataset.
type Report struct {
	TotalRows     int
	UniqueRows    int
	PlottableRows int
	Groups        []BedroomGroup
	Cheapest      *Listing
	Largest       *Listing
}
