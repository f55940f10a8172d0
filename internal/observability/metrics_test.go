package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.FeedRequests.WithLabelValues("success").Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.FeedRequests.WithLabelValues("success")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.FeedRequests.WithLabelValues("success")), 0)
}

func TestMetrics_RegisterOnFreshRegistry(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()

	require.NoError(t, reg.Register(m.FeedCache))
	require.NoError(t, reg.Register(m.SitesLoaded))

	m.SitesLoaded.WithLabelValues("geolocated").Set(2)
	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "pollution_map_sites_loaded")
}

func TestNewMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer(reg)

	m.FeedParseErrors.Inc()
	m.SitesLoaded.WithLabelValues("diffuse").Set(3)

	count, err := testutil.GatherAndCount(reg, "pollution_map_feed_parse_errors_total", "pollution_map_sites_loaded")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Panics(t, func() { NewMetricsWithRegisterer(reg) }, "duplicate registration")
}
