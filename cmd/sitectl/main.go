// Command sitectl fetches the pollution sites spreadsheet, or a saved copy of
// its response, and prints the parsed sites, per-sector statistics, or the
// color legend.
//
// Usage:
//
//	go run ./cmd/sitectl dump --file internal/domain/testdata/sites_feed.txt
//	go run ./cmd/sitectl stats
//	go run ./cmd/sitectl legend
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
