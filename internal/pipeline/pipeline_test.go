package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/pollution-map-service/internal/domain"
	"github.com/couchcryptid/pollution-map-service/internal/observability"
	"github.com/couchcryptid/pollution-map-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type stubFeed struct {
	body string
	err  error
}

func (f *stubFeed) Fetch(_ context.Context) (string, error) {
	return f.body, f.err
}

type flakyLoader struct {
	mu       sync.Mutex
	failures int
	calls    int
	result   domain.SitesResult
}

func (l *flakyLoader) LoadSites(_ context.Context) (domain.SitesResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.calls <= l.failures {
		return domain.SitesResult{}, fmt.Errorf("%w: status 503", domain.ErrFetchFailure)
	}
	return l.result, nil
}

func (l *flakyLoader) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type recordingPublisher struct {
	published chan domain.SitesResult
	err       error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{published: make(chan domain.SitesResult, 16)}
}

func (p *recordingPublisher) PublishSites(_ context.Context, result domain.SitesResult) error {
	if p.err != nil {
		return p.err
	}
	p.published <- result
	return nil
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "domain", "testdata", "sites_feed.txt"))
	require.NoError(t, err)
	return string(data)
}

func oneSite() domain.SitesResult {
	return domain.SitesResult{
		Sites: []domain.PollutionSite{{
			SiteBase:    domain.SiteBase{ID: 1, Name: "Usine X", Sector: "Industrie", Pollutions: []domain.PollutionEntry{}},
			Coordinates: domain.Coordinates{Lat: 45.9, Lng: 6.6},
		}},
		DiffuseSites: []domain.DiffusePollutionSite{},
	}
}

func receive(t *testing.T, ch <-chan domain.SitesResult) domain.SitesResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publish")
		return domain.SitesResult{}
	}
}

// --- Loader tests ---

func TestLoader_LoadSites_Fixture(t *testing.T) {
	metrics := newTestMetrics()
	l := pipeline.NewLoader(&stubFeed{body: readFixture(t)}, discardLogger(), metrics)

	got, err := l.LoadSites(context.Background())
	require.NoError(t, err)

	names := func(r domain.SitesResult) (geo, diffuse []string) {
		for _, s := range r.Sites {
			geo = append(geo, s.Name)
		}
		for _, s := range r.DiffuseSites {
			diffuse = append(diffuse, s.Name)
		}
		return geo, diffuse
	}
	geo, diffuse := names(got)
	if diff := cmp.Diff([]string{"Usine Alpha", "Décharge Beta"}, geo); diff != "" {
		t.Errorf("geolocated sites mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Trafic vallée", domain.DefaultSiteName}, diffuse); diff != "" {
		t.Errorf("diffuse sites mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SitesLoaded.WithLabelValues("geolocated")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SitesLoaded.WithLabelValues("diffuse")), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(metrics.PollutionEntries), 0)
	require.NoError(t, l.CheckReadiness(context.Background()))
}

func TestLoader_LoadSites_FetchFailure(t *testing.T) {
	feedErr := fmt.Errorf("%w: status 500", domain.ErrFetchFailure)
	l := pipeline.NewLoader(&stubFeed{err: feedErr}, discardLogger(), newTestMetrics())

	_, err := l.LoadSites(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailure)
	assert.Contains(t, err.Error(), "500")
	assert.Error(t, l.CheckReadiness(context.Background()))
}

func TestLoader_LoadSites_ParseFailure(t *testing.T) {
	metrics := newTestMetrics()
	l := pipeline.NewLoader(&stubFeed{body: "<html>quota exceeded</html>"}, discardLogger(), metrics)

	_, err := l.LoadSites(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParseFailure)
	assert.False(t, errors.Is(err, domain.ErrFetchFailure))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeedParseErrors), 0)
}

func TestLoader_ReadinessSurvivesLaterFailure(t *testing.T) {
	feed := &stubFeed{body: readFixture(t)}
	l := pipeline.NewLoader(feed, discardLogger(), newTestMetrics())

	_, err := l.LoadSites(context.Background())
	require.NoError(t, err)

	feed.err = domain.ErrFetchFailure
	_, err = l.LoadSites(context.Background())
	require.Error(t, err)
	assert.NoError(t, l.CheckReadiness(context.Background()))
}

func TestLoader_IndependentCalls(t *testing.T) {
	l := pipeline.NewLoader(&stubFeed{body: readFixture(t)}, discardLogger(), newTestMetrics())

	first, err := l.LoadSites(context.Background())
	require.NoError(t, err)
	first.Sites[0].Pollutions = append(first.Sites[0].Pollutions, domain.PollutionEntry{Frequency: "mutated"})

	second, err := l.LoadSites(context.Background())
	require.NoError(t, err)
	assert.Len(t, second.Sites[0].Pollutions, 3)
}

// --- Refresher tests ---

func TestRefresher_PublishesOnStartAndEveryTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loader := &flakyLoader{result: oneSite()}
	pub := newRecordingPublisher()
	metrics := newTestMetrics()

	r := pipeline.NewRefresher(loader, pub, time.Hour, discardLogger(), metrics, pipeline.WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	first := receive(t, pub.published)
	assert.Equal(t, "Usine X", first.Sites[0].Name)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Hour)
	receive(t, pub.published)
	assert.Equal(t, 2, loader.Calls())

	cancel()
	require.NoError(t, <-done)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.RefresherRunning), 0)
}

func TestRefresher_RetriesWithBackoff(t *testing.T) {
	loader := &flakyLoader{failures: 2, result: oneSite()}
	pub := newRecordingPublisher()
	metrics := newTestMetrics()

	r := pipeline.NewRefresher(loader, pub, time.Hour, discardLogger(), metrics,
		pipeline.WithClock(clockwork.NewFakeClock()),
		pipeline.WithBackoff(time.Millisecond, 4*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	receive(t, pub.published)
	assert.Equal(t, 3, loader.Calls())
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RefreshErrors), 0)
}

func TestRefresher_PublishErrorIsRetried(t *testing.T) {
	loader := &flakyLoader{result: oneSite()}
	pub := newRecordingPublisher()
	pub.err = errors.New("broker unavailable")

	r := pipeline.NewRefresher(loader, pub, time.Hour, discardLogger(), newTestMetrics(),
		pipeline.WithClock(clockwork.NewFakeClock()),
		pipeline.WithBackoff(time.Millisecond, time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, r.Run(ctx))
	assert.Greater(t, loader.Calls(), 1)
}

func TestRefresher_NilPublisher(t *testing.T) {
	loader := &flakyLoader{result: oneSite()}
	clock := clockwork.NewFakeClock()
	r := pipeline.NewRefresher(loader, nil, time.Minute, discardLogger(), newTestMetrics(), pipeline.WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	require.Eventually(t, func() bool { return loader.Calls() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRefresher_ContextCancellation(t *testing.T) {
	loader := &flakyLoader{failures: 1000}
	r := pipeline.NewRefresher(loader, newRecordingPublisher(), time.Hour, discardLogger(), newTestMetrics(),
		pipeline.WithBackoff(time.Hour, time.Hour),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, r.Run(ctx))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, loader.Calls())
}
