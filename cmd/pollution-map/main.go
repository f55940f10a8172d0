package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/pollution-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/pollution-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/pollution-map-service/internal/adapter/sheets"
	"github.com/couchcryptid/pollution-map-service/internal/config"
	"github.com/couchcryptid/pollution-map-service/internal/observability"
	"github.com/couchcryptid/pollution-map-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := sheets.NewClient(cfg.SheetID, cfg.FeedBaseURL, cfg.FeedTimeout, cfg.FeedRateLimit, metrics, logger)
	feed := sheets.NewCachedFeed(client, cfg.FeedCacheTTL, clockwork.NewRealClock(), metrics)
	loader := pipeline.NewLoader(feed, logger, metrics)
	logger.Info("spreadsheet feed configured", "url", client.URL(), "cache_ttl", cfg.FeedCacheTTL)

	var writer *kafkaadapter.Writer
	var publisher pipeline.Publisher
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSitesTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, loader, loader, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start background refresher.
	if cfg.RefreshInterval > 0 {
		refresher := pipeline.NewRefresher(loader, publisher, cfg.RefreshInterval, logger, metrics)
		go func() {
			if err := refresher.Run(ctx); err != nil {
				logger.Error("refresher error", "error", err)
			}
		}()
	} else {
		logger.Info("background refresh disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
