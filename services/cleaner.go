package services

import (
	"craigslist-scraper/models"
	"craigslist-scraper/utils"
)

// Cleaner prepares a loaded dataset for reporting.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Dedupe drops every listing whose title exactly matches an earlier one,
// keeping the first occurrence and the original order.
func (c *Cleaner) Dedupe(listings []*models.Listing) []*models.Listing {
	seen := utils.NewSeenSet()
	result := make([]*models.Listing, 0, len(listings))

	for _, l := range listings {
		if !seen.Add(l.Title) {
			c.logger.Debug("[cleaner] Duplicate title skipped: %s", l.Title)
			continue
		}
		result = append(result, l)
	}

	c.logger.Info("[cleaner] Deduplicated %d → %d listings (dropped %d)",
		len(listings), len(result), len(listings)-len(result))
	return result
}

// Plottable keeps the listings that carry both a bedroom count and a square footage.
func Plottable(listings []*models.Listing) []*models.Listing {
	result := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.HasPlotFields() {
			result = append(result, l)
		}
	}
	return result
}
