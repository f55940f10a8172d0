package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pollution_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the sites service.
type Metrics struct {
	// Feed metrics.
	FeedRequests      *prometheus.CounterVec // labels: outcome={success,error}
	FeedCache         *prometheus.CounterVec // labels: result={hit,miss}
	FeedDuration      prometheus.Histogram
	FeedParseErrors   prometheus.Counter
	FeedRateLimitWait prometheus.Histogram

	// Load metrics.
	SitesLoaded      *prometheus.GaugeVec // labels: kind={geolocated,diffuse}
	PollutionEntries prometheus.Gauge
	LoadDuration     prometheus.Histogram

	// Refresher and publishing.
	RefresherRunning  prometheus.Gauge
	RefreshErrors     prometheus.Counter
	MessagesPublished prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates all service metrics and registers them with reg.
func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	m := newMetrics()

	reg.MustRegister(
		m.FeedRequests,
		m.FeedCache,
		m.FeedDuration,
		m.FeedParseErrors,
		m.FeedRateLimitWait,
		m.SitesLoaded,
		m.PollutionEntries,
		m.LoadDuration,
		m.RefresherRunning,
		m.RefreshErrors,
		m.MessagesPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Spreadsheet feed requests by outcome.",
		}, []string{"outcome"}),
		FeedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_cache_total",
			Help:      "Feed cache lookups by result.",
		}, []string{"result"}),
		FeedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_request_duration_seconds",
			Help:      "Spreadsheet feed request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FeedParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_parse_errors_total",
			Help:      "Feed bodies that could not be unwrapped or decoded.",
		}),
		FeedRateLimitWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_rate_limit_wait_seconds",
			Help:      "Time spent waiting on the outbound rate limiter.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5},
		}),
		SitesLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sites_loaded",
			Help:      "Sites produced by the last successful load, by kind.",
		}, []string{"kind"}),
		PollutionEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pollution_entries_loaded",
			Help:      "Pollution entries across all sites from the last successful load.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete fetch-decode-build cycle.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresher_running",
			Help:      "1 when the background refresher is active, 0 when stopped.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Failed refresh attempts.",
		}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Site messages written to the sites topic.",
		}),
	}
}
