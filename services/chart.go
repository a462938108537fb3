package services

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"craigslist-scraper/models"
	"craigslist-scraper/utils"
)

// ErrNothingToPlot is returned when no listing has both beds and sqft.
var ErrNothingToPlot = errors.New("no listings with both beds and sqft")

const (
	chartWidth  = 12 * vg.Inch
	chartHeight = 8 * vg.Inch
)

// ChartRenderer draws the price vs. square footage scatter.
type ChartRenderer struct {
	Title  string
	logger *utils.Logger
}

// NewChartRenderer creates a ChartRenderer whose plots carry title.
func NewChartRenderer(title string, logger *utils.Logger) *ChartRenderer {
	return &ChartRenderer{Title: title, logger: logger}
}

// Build lays out the chart: one series per bedroom token, colored along
// a green to yellow ramp in bedroom order. Listings missing beds or sqft
// are left out.
func (c *ChartRenderer) Build(listings []*models.Listing) (*plot.Plot, error) {
	points := Plottable(listings)
	if len(points) == 0 {
		return nil, ErrNothingToPlot
	}

	series := make(map[string]plotter.XYs)
	for _, l := range points {
		series[*l.Beds] = append(series[*l.Beds], plotter.XY{X: float64(l.Price), Y: float64(*l.Sqft)})
	}

	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	SortBeds(keys)

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = "Price"
	p.Y.Label.Text = "Square Footage"
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.X.Label.TextStyle.Font.Size = vg.Points(18)
	p.Y.Label.TextStyle.Font.Size = vg.Points(18)
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(12)
	p.Add(plotter.NewGrid())

	for i, k := range keys {
		sc, err := plotter.NewScatter(series[k])
		if err != nil {
			return nil, fmt.Errorf("chart: series %q: %w", k, err)
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(5)
		sc.GlyphStyle.Color = summer(i, len(keys))

		p.Add(sc)
		p.Legend.Add(k, sc)
	}

	return p, nil
}

// Render builds the chart and saves it to path; the extension picks the
// format (.png, .svg, .pdf, ...).
func (c *ChartRenderer) Render(listings []*models.Listing, path string) error {
	p, err := c.Build(listings)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("chart: create output dir: %w", err)
	}
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("chart: save %q: %w", path, err)
	}
	c.logger.Info("[chart] Wrote %s", path)
	return nil
}

// Encode builds the chart and writes it to w in the given format, e.g. "png".
func (c *ChartRenderer) Encode(listings []*models.Listing, w io.Writer, format string) error {
	p, err := c.Build(listings)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(chartWidth, chartHeight, strings.ToLower(format))
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: encode: %w", err)
	}
	return nil
}

// summer interpolates matplotlib's "summer" colormap: (0, .5, .4) to (1, 1, .4).
func summer(i, n int) color.Color {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	return color.RGBA{
		R: uint8(255 * t),
		G: uint8(255 * (0.5 + 0.5*t)),
		B: uint8(255 * 0.4),
		A: 255,
	}
}
