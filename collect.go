package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"craigslist-scraper/config"
	"craigslist-scraper/models"
	"craigslist-scraper/scraper/craigslist"
	"craigslist-scraper/storage"
	"craigslist-scraper/utils"
)

func newCollectCmd(cfg *config.Config, logger *utils.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Scrape every results page for a region and write the listings CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&cfg.Region, "region", cfg.Region, "craigslist region subdomain")
	cmd.Flags().StringVarP(&cfg.CSVOutputPath, "out", "o", cfg.CSVOutputPath, "CSV output path")
	cmd.Flags().StringVar(&cfg.FetchMode, "mode", cfg.FetchMode, "fetch mode (http|browser)")
	cmd.Flags().StringVar(&cfg.SelectorsFile, "selectors", cfg.SelectorsFile, "YAML file overriding CSS selectors")
	cmd.Flags().BoolVar(&cfg.SkipMalformed, "skip-malformed", cfg.SkipMalformed, "skip listings with unparseable price or sqft instead of aborting")
	cmd.Flags().StringVar(&cfg.PostgresDSN, "postgres", cfg.PostgresDSN, "also store listings in PostgreSQL (DSN)")

	return cmd
}

func runCollect(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("=== Craigslist collector starting ===")
	logger.Info("Config: region %s | page size %d | delay %d-%ds | mode %s",
		cfg.Region, cfg.PageSize, cfg.MinDelaySec, cfg.MaxDelaySec, cfg.FetchMode)

	selectors, err := config.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		return err
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return err
	}
	writers := []storage.ListingWriter{csvWriter}

	if cfg.PostgresDSN != "" {
		pgWriter, err := storage.NewPostgresWriter(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return err
		}
		writers = append(writers, pgWriter)
	}
	defer func() {
		for _, w := range writers {
			_ = w.Close()
		}
	}()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	scraper := craigslist.New(cfg, logger, fetcher,
		craigslist.NewParser(selectors, cfg.SkipMalformed),
		utils.NewThrottle(cfg.MinDelaySec, cfg.MaxDelaySec))

	listings, err := scraper.Scrape(ctx)
	if err != nil {
		if errors.Is(err, craigslist.ErrMalformed) {
			logger.Error("Malformed listing aborted the run; rerun with --skip-malformed to drop such rows")
		}
		return fmt.Errorf("scrape failed: %w", err)
	}

	return writeAll(writers, listings, logger)
}

func newFetcher(cfg *config.Config) (craigslist.Fetcher, error) {
	if cfg.FetchMode == config.FetchModeBrowser {
		return craigslist.NewBrowserFetcher(cfg.ChromeBin, cfg.UserAgent)
	}
	return craigslist.NewHTTPFetcher(cfg.UserAgent), nil
}

func writeAll(writers []storage.ListingWriter, listings []*models.Listing, logger *utils.Logger) error {
	for _, w := range writers {
		if err := w.Write(listings); err != nil {
			return err
		}
	}

	if len(writers) > 0 {
		if csvWriter, ok := writers[0].(*storage.CSVWriter); ok {
			logger.Info("Wrote %d listings to %s", len(listings), csvWriter.Path())
		}
	}
	if len(writers) > 1 {
		logger.Info("Listings mirrored to PostgreSQL (table: listings)")
	}
	return nil
}
