package agromet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agroclima/agromet-etl/internal/domain"
	"github.com/agroclima/agromet-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchCatalog_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, catalogPath, r.URL.Path)
		assert.Equal(t, contentTypeJSON, r.Header.Get("Accept"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, err := w.Write([]byte(`{
			"geometry": [{"coordinates": [-70.63, -33.57]}],
			"properties": [{"code": 330020, "name": "La Platina"}]
		}`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	catalog, err := testClient(srv.URL).FetchCatalog(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, catalog.Len())
	assert.Equal(t, domain.Station{ID: "330020", Name: "La Platina", Lon: -70.63, Lat: -33.57}, catalog.Stations[0])
}

func TestClient_FetchCatalog_LengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"geometry": [{"coordinates": [-70.63, -33.57]}],
			"properties": []
		}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchCatalog(context.Background())
	require.Error(t, err)

	var malformed *domain.MalformedCatalogError
	assert.True(t, errors.As(err, &malformed))
}

func TestClient_FetchSnapshot_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, snapshotPath, r.URL.Path)

		w.Header().Set(headerContentType, contentTypeJSON)
		_, err := w.Write([]byte(`{
			"2025-08-10T14:00": {
				"330020": {"temperatura": 18.5, "humedad_relativa": -99.0},
				"330021": null
			}
		}`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	snapshot, err := testClient(srv.URL).FetchSnapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot, 1)
	stations := snapshot["2025-08-10T14:00"]
	assert.Equal(t, 18.5, stations["330020"][domain.ParamTemperature])
	// Sentinel readings pass through the adapter untouched; translation is
	// the extractor's job.
	assert.Equal(t, -99.0, stations["330020"][domain.ParamHumidity])
	// A null station entry decodes to a nil map.
	inner, present := stations["330021"]
	assert.True(t, present)
	assert.Nil(t, inner)
}

func TestClient_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "upstream maintenance")
}

func TestClient_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode catalog response")
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).FetchSnapshot(ctx)
	require.Error(t, err)
}
