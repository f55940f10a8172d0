package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/pollution-map-service/internal/adapter/sheets"
	"github.com/couchcryptid/pollution-map-service/internal/config"
	"github.com/couchcryptid/pollution-map-service/internal/domain"
	"github.com/couchcryptid/pollution-map-service/internal/observability"
	"github.com/couchcryptid/pollution-map-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// options are the flags shared by every subcommand.
type options struct {
	sheetID string
	baseURL string
	timeout time.Duration
	verbose bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "sitectl",
		Short:         "Inspect the pollution sites spreadsheet feed",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if !cmd.Flags().Changed("sheet-id") {
				opts.sheetID = cfg.SheetID
			}
			if !cmd.Flags().Changed("base-url") {
				opts.baseURL = cfg.FeedBaseURL
			}
			if !cmd.Flags().Changed("timeout") {
				opts.timeout = cfg.FeedTimeout
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.sheetID, "sheet-id", config.DefaultSheetID, "Spreadsheet identifier")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", sheets.DefaultBaseURL, "Spreadsheet document root")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP timeout for the feed request")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	root.AddCommand(newDumpCmd(opts), newStatsCmd(opts), newLegendCmd())
	return root
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadSites reads from file when set, otherwise from the live feed.
func (o *options) loadSites(cmd *cobra.Command, file string) (domain.SitesResult, error) {
	logger := o.logger()
	metrics := observability.NewMetricsWithRegisterer(prometheus.NewRegistry())

	var feed domain.Feed
	if file != "" {
		feed = sheets.FileFeed{Path: file}
	} else {
		feed = sheets.NewClient(o.sheetID, o.baseURL, o.timeout, o.cfg.FeedRateLimit, metrics, logger)
	}
	return pipeline.NewLoader(feed, logger, metrics).LoadSites(cmd.Context())
}
