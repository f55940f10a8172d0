package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/pollution-map-service/internal/domain"
	"github.com/couchcryptid/pollution-map-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

// SitesLoader produces a fresh SitesResult.
type SitesLoader interface {
	LoadSites(ctx context.Context) (domain.SitesResult, error)
}

// Publisher receives every successfully loaded SitesResult.
type Publisher interface {
	PublishSites(ctx context.Context, result domain.SitesResult) error
}

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
)

// Refresher reloads sites on a fixed interval and hands each result to a
// Publisher. A failed refresh is retried with exponential backoff until it
// succeeds or the context is cancelled.
type Refresher struct {
	loader    SitesLoader
	publisher Publisher
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithClock sets the clock driving the refresh ticker.
func WithClock(c clockwork.Clock) Option {
	return func(r *Refresher) { r.clock = c }
}

// WithBackoff sets the first retry delay and its cap.
func WithBackoff(initial, maxBackoff time.Duration) Option {
	return func(r *Refresher) {
		r.initialBackoff = initial
		r.maxBackoff = maxBackoff
	}
}

// NewRefresher creates a Refresher. publisher may be nil, in which case the
// refresher only keeps the feed cache warm.
func NewRefresher(loader SitesLoader, publisher Publisher, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Refresher {
	r := &Refresher{
		loader:         loader,
		publisher:      publisher,
		interval:       interval,
		clock:          clockwork.NewRealClock(),
		logger:         logger,
		metrics:        metrics,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run refreshes immediately, then on every tick, until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started", "interval", r.interval)
	r.metrics.RefresherRunning.Set(1)
	defer r.metrics.RefresherRunning.Set(0)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			r.refresh(ctx)
		}
	}
}

// refresh retries refreshOnce until it succeeds or ctx is cancelled.
func (r *Refresher) refresh(ctx context.Context) {
	backoff := r.initialBackoff
	for {
		err := r.refreshOnce(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		r.metrics.RefreshErrors.Inc()
		r.logger.Error("refresh failed", "error", err, "retry_in", backoff)

		if !retry.SleepWithContext(ctx, backoff) {
			return
		}
		backoff = retry.NextBackoff(backoff, r.maxBackoff)
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) error {
	result, err := r.loader.LoadSites(ctx)
	if err != nil {
		return err
	}
	if r.publisher == nil {
		return nil
	}
	if err := r.publisher.PublishSites(ctx, result); err != nil {
		return err
	}
	r.logger.Info("sites published",
		"sites", len(result.Sites),
		"diffuse_sites", len(result.DiffuseSites),
	)
	return nil
}
