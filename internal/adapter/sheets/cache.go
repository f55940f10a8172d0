package sheets

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/pollution-map-service/internal/domain"
	"github.com/couchcryptid/pollution-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultCacheTTL is how long a fetched body is reused.
const DefaultCacheTTL = time.Hour

// CachedFeed wraps a Feed and reuses the last successful body for a fixed
// window. Failures are never cached. Concurrent misses each reach the inner
// feed.
type CachedFeed struct {
	inner   domain.Feed
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu        sync.Mutex
	body      string
	fetchedAt time.Time
	valid     bool
}

// NewCachedFeed creates a cache decorator around a feed.
func NewCachedFeed(inner domain.Feed, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedFeed {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFeed{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

// Fetch returns the cached body while it is younger than the TTL, otherwise
// fetches through the inner feed.
func (c *CachedFeed) Fetch(ctx context.Context) (string, error) {
	if body, ok := c.get(); ok {
		c.metrics.FeedCache.WithLabelValues("hit").Inc()
		return body, nil
	}
	c.metrics.FeedCache.WithLabelValues("miss").Inc()

	body, err := c.inner.Fetch(ctx)
	if err != nil {
		return "", err
	}
	c.put(body)
	return body, nil
}

// Invalidate drops the cached body so the next Fetch goes to the inner feed.
func (c *CachedFeed) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.body = ""
}

func (c *CachedFeed) get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid || c.clock.Since(c.fetchedAt) >= c.ttl {
		return "", false
	}
	return c.body, true
}

func (c *CachedFeed) put(body string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.body = body
	c.fetchedAt = c.clock.Now()
	c.valid = true
}
