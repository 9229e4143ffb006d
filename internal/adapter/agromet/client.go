// Package agromet is the HTTP adapter for the public agromet REST API.
package agromet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/agroclima/agromet-etl/internal/domain"
	"github.com/agroclima/agromet-etl/internal/observability"
)

// Endpoint paths relative to the configured base URL.
const (
	catalogPath  = "/estaciones"
	snapshotPath = "/mediciones/recientes"
)

// Metric label values.
const (
	endpointCatalog  = "catalog"
	endpointSnapshot = "snapshot"
	outcomeSuccess   = "success"
	outcomeError     = "error"
)

// Client fetches the station catalog and observation snapshot endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an agromet API client with a fixed per-request timeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchCatalog gets the station catalog and flattens it. A parallel-array
// length mismatch in the payload surfaces as a domain.MalformedCatalogError.
func (c *Client) FetchCatalog(ctx context.Context) (domain.Catalog, error) {
	var payload domain.CatalogPayload
	if err := c.getJSON(ctx, c.baseURL+catalogPath, endpointCatalog, &payload); err != nil {
		return domain.Catalog{}, err
	}

	catalog, err := domain.BuildCatalog(payload)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("build catalog: %w", err)
	}

	c.logger.Debug("catalog fetched", "stations", catalog.Len())
	return catalog, nil
}

// FetchSnapshot gets the rolling time-first observation snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (domain.SnapshotPayload, error) {
	var payload domain.SnapshotPayload
	if err := c.getJSON(ctx, c.baseURL+snapshotPath, endpointSnapshot, &payload); err != nil {
		return nil, err
	}

	c.logger.Debug("snapshot fetched", "timestamps", len(payload))
	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(endpoint, outcomeError).Inc()
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.FetchRequests.WithLabelValues(endpoint, outcomeError).Inc()
		return fmt.Errorf("agromet API error: %s: status %d: %s", endpoint, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.FetchRequests.WithLabelValues(endpoint, outcomeError).Inc()
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	c.metrics.FetchRequests.WithLabelValues(endpoint, outcomeSuccess).Inc()
	return nil
}
