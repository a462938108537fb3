package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"craigslist-scraper/config"
	"craigslist-scraper/models"
	"craigslist-scraper/services"
	"craigslist-scraper/storage"
	"craigslist-scraper/utils"
)

func newReportCmd(cfg *config.Config, logger *utils.Logger) *cobra.Command {
	var fromDB bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Deduplicate the collected listings and chart price against square footage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := loadListings(cmd.Context(), cfg, logger, fromDB)
			if err != nil {
				return err
			}
			return runReport(cfg, logger, listings, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&cfg.CSVOutputPath, "in", "i", cfg.CSVOutputPath, "listings CSV to read")
	cmd.Flags().StringVar(&cfg.ChartOutputPath, "chart", cfg.ChartOutputPath, "chart output path (.png, .svg, .pdf)")
	cmd.Flags().StringVar(&cfg.Region, "region", cfg.Region, "region named in the chart title")
	cmd.Flags().StringVar(&cfg.PostgresDSN, "postgres", cfg.PostgresDSN, "PostgreSQL DSN used with --from-db")
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "read listings from PostgreSQL instead of the CSV")

	return cmd
}

func loadListings(ctx context.Context, cfg *config.Config, logger *utils.Logger, fromDB bool) ([]*models.Listing, error) {
	if !fromDB {
		listings, err := storage.ReadCSV(cfg.CSVOutputPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded %d listings from %s", len(listings), cfg.CSVOutputPath)
		return listings, nil
	}

	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("--from-db needs a PostgreSQL DSN (--postgres or POSTGRES_DSN)")
	}
	pg, err := storage.NewPostgresWriter(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, err
	}
	defer pg.Close()

	listings, err := pg.FetchAll()
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded %d listings from PostgreSQL", len(listings))
	return listings, nil
}

func runReport(cfg *config.Config, logger *utils.Logger, listings []*models.Listing, out io.Writer) error {
	unique := services.NewCleaner(logger).Dedupe(listings)

	insights := services.NewInsightService(logger)
	insights.Print(out, insights.Generate(len(listings), unique))

	chart := services.NewChartRenderer(fmt.Sprintf("Price vs. Square Footage, %s", cfg.Region), logger)
	if err := chart.Render(unique, cfg.ChartOutputPath); err != nil {
		if errors.Is(err, services.ErrNothingToPlot) {
			logger.Warn("[report] No chart written: %v", err)
			return nil
		}
		return err
	}

	fmt.Fprintf(out, "  Chart → %s\n\n", cfg.ChartOutputPath)
	return nil
}
