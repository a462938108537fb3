package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"craigslist-scraper/config"
	"craigslist-scraper/utils"
)

var flagVerbose bool

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(cfg, logger)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, logger *utils.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "craigslist",
		Short:         "Scrape craigslist apartment listings and chart them",
		Long:          "Collect apartment listings for a craigslist region into a CSV file, then report on them with a price vs. square footage chart.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(flagVerbose)
		},
	}

	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newCollectCmd(cfg, logger),
		newReportCmd(cfg, logger),
	)
	return root
}
