package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// observation pipeline.
type Metrics struct {
	RunsTotal       prometheus.Counter
	RunFailures     prometheus.Counter
	RunDuration     prometheus.Histogram
	PipelineRunning prometheus.Gauge

	StationsSelected      prometheus.Gauge
	ObservationsExtracted prometheus.Counter
	MissingReadings       prometheus.Counter
	AdvisoriesEmitted     *prometheus.CounterVec // labels: label={heat-stress,...}

	// Upstream fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: endpoint={catalog,snapshot}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: endpoint={catalog,snapshot}
	CatalogCache  *prometheus.CounterVec   // labels: result={hit,miss,expired}

	ObservationsPublished prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agromet_etl",
			Name:      "runs_total",
			Help:      "Total pipeline runs attempted.",
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agromet_etl",
			Name:      "run_failures_total",
			Help:      "Total pipeline runs that ended in a hard failure.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agromet_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-extract-aggregate-export cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agromet_etl",
			Name:      "pipeline_running",
			Help:      "1 when the watch loop is active, 0 when shut down.",
		}),
		StationsSelected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agromet_etl",
			Name:      "stations_selected",
			Help:      "Stations in the target set after region/name filtering.",
		}),
		ObservationsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agromet_etl",
			Name:      "observations_extracted_total",
			Help:      "Flattened observation rows produced by the extractor.",
		}),
		MissingReadings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agromet_etl",
			Name:      "missing_readings_total",
			Help:      "Sentinel readings translated to absent markers.",
		}),
		AdvisoriesEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agromet_etl",
			Name:      "advisories_emitted_total",
			Help:      "Advisories derived, by label.",
		}, []string{"label"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agromet_etl",
			Name:      "fetch_requests_total",
			Help:      "Upstream API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agromet_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		CatalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agromet_etl",
			Name:      "catalog_cache_total",
			Help:      "Catalog cache lookups by result.",
		}, []string{"result"}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agromet_etl",
			Name:      "observations_published_total",
			Help:      "Observation rows published to the Kafka sink topic.",
		}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.RunFailures,
		m.RunDuration,
		m.PipelineRunning,
		m.StationsSelected,
		m.ObservationsExtracted,
		m.MissingReadings,
		m.AdvisoriesEmitted,
		m.FetchRequests,
		m.FetchDuration,
		m.CatalogCache,
		m.ObservationsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agromet_etl", Name: "runs_total"}),
		RunFailures:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agromet_etl", Name: "run_failures_total"}),
		RunDuration:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "agromet_etl", Name: "run_duration_seconds"}),
		PipelineRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "agromet_etl", Name: "pipeline_running"}),
		StationsSelected:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "agromet_etl", Name: "stations_selected"}),
		ObservationsExtracted: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agromet_etl", Name: "observations_extracted_total"}),
		MissingReadings:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agromet_etl", Name: "missing_readings_total"}),
		AdvisoriesEmitted:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "agromet_etl", Name: "advisories_emitted_total"}, []string{"label"}),
		FetchRequests:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "agromet_etl", Name: "fetch_requests_total"}, []string{"endpoint", "outcome"}),
		FetchDuration:         prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "agromet_etl", Name: "fetch_duration_seconds"}, []string{"endpoint"}),
		CatalogCache:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "agromet_etl", Name: "catalog_cache_total"}, []string{"result"}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agromet_etl", Name: "observations_published_total"}),
	}
}
