package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"craigslist-scraper/models"
	"craigslist-scraper/utils"
)

// InsightService builds and prints the per-bedroom price summary.
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates an InsightService.
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarizes deduplicated listings. total is the row count before
// deduplication.
func (s *InsightService) Generate(total int, listings []*models.Listing) *models.Report {
	report := &models.Report{
		TotalRows:  total,
		UniqueRows: len(listings),
	}

	for _, l := range listings {
		if report.Cheapest == nil || l.Price < report.Cheapest.Price {
			report.Cheapest = l
		}
		if l.Sqft != nil && (report.Largest == nil || *l.Sqft > *report.Largest.Sqft) {
			report.Largest = l
		}
	}

	plottable := Plottable(listings)
	report.PlottableRows = len(plottable)

	groups := make(map[string]*models.BedroomGroup)
	sums := make(map[string][3]float64) // price, sqft, price per sqft
	for _, l := range plottable {
		g, ok := groups[*l.Beds]
		if !ok {
			g = &models.BedroomGroup{Beds: *l.Beds, MinPrice: l.Price, MaxPrice: l.Price}
			groups[*l.Beds] = g
		}
		g.Count++
		g.MinPrice = min(g.MinPrice, l.Price)
		g.MaxPrice = max(g.MaxPrice, l.Price)

		acc := sums[*l.Beds]
		acc[0] += float64(l.Price)
		acc[1] += float64(*l.Sqft)
		if *l.Sqft > 0 {
			acc[2] += float64(l.Price) / float64(*l.Sqft)
		}
		sums[*l.Beds] = acc
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	SortBeds(keys)

	for _, k := range keys {
		g := groups[k]
		acc := sums[k]
		n := float64(g.Count)
		g.AveragePrice = round2(acc[0] / n)
		g.AverageSqft = round2(acc[1] / n)
		g.PricePerSqft = round2(acc[2] / n)
		report.Groups = append(report.Groups, *g)
	}

	s.logger.Debug("[insights] %d bedroom groups over %d plottable listings", len(report.Groups), report.PlottableRows)
	return report
}

// Print renders the report as tables on w.
func (s *InsightService) Print(w io.Writer, r *models.Report) {
	fmt.Fprintf(w, "\nListings: %d rows, %d unique titles, %d with beds and sqft\n\n",
		r.TotalRows, r.UniqueRows, r.PlottableRows)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Beds", "Count", "Avg Price", "Min", "Max", "Avg Sqft", "$/Sqft"})
	for _, g := range r.Groups {
		t.AppendRow(table.Row{
			g.Beds, g.Count,
			fmt.Sprintf("$%.2f", g.AveragePrice),
			fmt.Sprintf("$%d", g.MinPrice),
			fmt.Sprintf("$%d", g.MaxPrice),
			fmt.Sprintf("%.0f", g.AverageSqft),
			fmt.Sprintf("%.2f", g.PricePerSqft),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if r.Cheapest != nil {
		fmt.Fprintf(w, "\nCheapest: $%d  %s\n", r.Cheapest.Price, r.Cheapest.Title)
	}
	if r.Largest != nil {
		fmt.Fprintf(w, "Largest:  %d ft2  %s\n", *r.Largest.Sqft, r.Largest.Title)
	}
	fmt.Fprintln(w)
}

// SortBeds orders bedroom tokens numerically where possible, with
// non-numeric tokens after them in lexical order.
func SortBeds(beds []string) {
	sort.SliceStable(beds, func(i, j int) bool {
		a, errA := strconv.ParseFloat(beds[i], 64)
		b, errB := strconv.ParseFloat(beds[j], 64)
		switch {
		case errA == nil && errB == nil:
			if a != b {
				return a < b
			}
			return beds[i] < beds[j]
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return beds[i] < beds[j]
	})
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
