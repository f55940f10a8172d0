package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/pollution-map-service/internal/domain"
	"github.com/couchcryptid/pollution-map-service/internal/observability"
)

// Loader runs one fetch-decode-build pass per call. It holds no parsed state
// between calls; only the feed it wraps may cache.
type Loader struct {
	feed    domain.Feed
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// NewLoader creates a Loader reading from feed.
func NewLoader(feed domain.Feed, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		feed:    feed,
		logger:  logger,
		metrics: metrics,
	}
}

// LoadSites fetches the spreadsheet and rebuilds both site collections.
// Fetch and parse failures are returned unchanged; nothing is retried.
func (l *Loader) LoadSites(ctx context.Context) (domain.SitesResult, error) {
	start := time.Now()

	body, err := l.feed.Fetch(ctx)
	if err != nil {
		l.logger.Error("fetch spreadsheet failed", "error", err)
		return domain.SitesResult{}, err
	}

	table, err := domain.DecodeFeed(body)
	if err != nil {
		l.metrics.FeedParseErrors.Inc()
		l.logger.Error("decode spreadsheet failed", "error", err, "bytes", len(body))
		return domain.SitesResult{}, err
	}

	result := domain.BuildSites(table.Rows)

	entries := 0
	for _, s := range result.Sites {
		entries += len(s.Pollutions)
	}
	for _, s := range result.DiffuseSites {
		entries += len(s.Pollutions)
	}

	l.metrics.SitesLoaded.WithLabelValues("geolocated").Set(float64(len(result.Sites)))
	l.metrics.SitesLoaded.WithLabelValues("diffuse").Set(float64(len(result.DiffuseSites)))
	l.metrics.PollutionEntries.Set(float64(entries))
	l.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	l.ready.Store(true)

	l.logger.Debug("sites loaded",
		"rows", len(table.Rows),
		"sites", len(result.Sites),
		"diffuse_sites", len(result.DiffuseSites),
		"pollution_entries", entries,
	)
	return result, nil
}

// CheckReadiness returns nil once at least one load has succeeded.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("sites have not been loaded yet")
	}
	return nil
}
