package sheets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/pollution-map-service/internal/domain"
	"github.com/couchcryptid/pollution-map-service/internal/observability"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Google Sheets document root.
const DefaultBaseURL = "https://docs.google.com/spreadsheets/d"

// maxBodyBytes bounds how much of a feed response is read into memory.
const maxBodyBytes = 32 << 20

// Client implements domain.Feed using the Google Visualization query endpoint
// of a published spreadsheet.
type Client struct {
	spreadsheetID string
	baseURL       string
	httpClient    *http.Client
	limiter       *rate.Limiter
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewClient creates a spreadsheet feed client. rps bounds outbound requests
// per second; callers wait for a token rather than being rejected.
func NewClient(spreadsheetID, baseURL string, timeout time.Duration, rps float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		spreadsheetID: spreadsheetID,
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// URL returns the feed address for the configured spreadsheet.
func (c *Client) URL() string {
	return fmt.Sprintf("%s/%s/gviz/tq?tqx=out:json", c.baseURL, c.spreadsheetID)
}

// Fetch retrieves the raw response body. Transport failures and non-2xx
// statuses wrap domain.ErrFetchFailure.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %w", domain.ErrFetchFailure, err)
	}
	c.metrics.FeedRateLimitWait.Observe(time.Since(waitStart).Seconds())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", domain.ErrFetchFailure, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FeedDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FeedRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: request: %w", domain.ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.FeedRequests.WithLabelValues("error").Inc()
		c.logger.Warn("spreadsheet feed returned error status", "status", resp.StatusCode, "spreadsheet", c.spreadsheetID)
		return "", fmt.Errorf("%w: status %d", domain.ErrFetchFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.FeedRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: read body: %w", domain.ErrFetchFailure, err)
	}

	c.metrics.FeedRequests.WithLabelValues("success").Inc()
	c.logger.Debug("spreadsheet feed fetched", "bytes", len(body), "duration", time.Since(start))
	return string(body), nil
}
