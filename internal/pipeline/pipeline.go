// Package pipeline orchestrates one fetch-extract-aggregate-export cycle and
// the watch-mode loop around it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agroclima/agromet-etl/internal/config"
	"github.com/agroclima/agromet-etl/internal/domain"
	"github.com/agroclima/agromet-etl/internal/observability"
)

// CatalogFetcher fetches the flattened station catalog.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) (domain.Catalog, error)
}

// SnapshotFetcher fetches the time-first observation snapshot.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (domain.SnapshotPayload, error)
}

// Exporter persists a run to flat files.
type Exporter interface {
	ExportRun(ctx context.Context, run domain.RunResult) error
}

// Publisher forwards extracted observation rows to a downstream sink.
type Publisher interface {
	PublishBatch(ctx context.Context, observations []domain.Observation) error
}

// Runner executes pipeline cycles.
type Runner struct {
	catalogs  CatalogFetcher
	snapshots SnapshotFetcher
	exporter  Exporter
	publisher Publisher // nil disables publishing

	region *domain.BoundingBox
	names  []string

	logger  *slog.Logger
	metrics *observability.Metrics

	ready   atomic.Bool
	mu      sync.RWMutex
	lastRun *domain.RunResult
}

// New creates a Runner. Pass a nil publisher to disable Kafka publishing;
// region and name selection come from the config.
func New(catalogs CatalogFetcher, snapshots SnapshotFetcher, exporter Exporter, publisher Publisher,
	cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		catalogs:  catalogs,
		snapshots: snapshots,
		exporter:  exporter,
		publisher: publisher,
		region:    cfg.Region,
		names:     cfg.StationNames,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one run has completed, or an
// error describing why the service is not yet ready.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// LastRun returns the most recently completed run, if any.
func (r *Runner) LastRun() (domain.RunResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.lastRun == nil {
		return domain.RunResult{}, false
	}
	return *r.lastRun, true
}

// RunOnce executes one complete cycle: fetch catalog, select targets, fetch
// snapshot, extract, aggregate, derive advisories, export, publish. Upstream
// fetch and export failures are hard errors; an empty target set or an empty
// extraction is a normal zero-result run.
func (r *Runner) RunOnce(ctx context.Context) (domain.RunResult, error) {
	start := time.Now()
	r.metrics.RunsTotal.Inc()

	run, err := r.runCycle(ctx)
	if err != nil {
		r.metrics.RunFailures.Inc()
		return domain.RunResult{}, err
	}

	r.metrics.RunDuration.Observe(time.Since(start).Seconds())
	r.setLastRun(run)
	r.ready.Store(true)
	return run, nil
}

func (r *Runner) runCycle(ctx context.Context) (domain.RunResult, error) {
	catalog, err := r.catalogs.FetchCatalog(ctx)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("fetch catalog: %w", err)
	}

	targets := domain.SelectStations(catalog, r.region, r.names)
	r.metrics.StationsSelected.Set(float64(len(targets)))
	if len(targets) == 0 {
		r.logger.Warn("target station set is empty; run will extract nothing",
			"catalog_size", catalog.Len())
	}

	snapshot, err := r.snapshots.FetchSnapshot(ctx)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("fetch snapshot: %w", err)
	}

	observations := domain.ExtractObservations(snapshot, targets, catalog)
	r.metrics.ObservationsExtracted.Add(float64(len(observations)))
	missing := 0
	for _, row := range observations {
		missing += len(row.Missing)
	}
	r.metrics.MissingReadings.Add(float64(missing))

	byTimestamp := domain.SummarizeByTimestamp(observations)
	advisories := domain.DeriveAdvisories(byTimestamp)
	for _, advisory := range advisories {
		r.metrics.AdvisoriesEmitted.WithLabelValues(advisory.Label).Inc()
	}

	run := domain.RunResult{
		FetchedAt:    domain.Now(),
		Selected:     selectedStations(catalog, targets),
		Observations: observations,
		ByTimestamp:  byTimestamp,
		ByStation:    domain.SummarizeByStation(observations),
		Advisories:   advisories,
	}

	if err := r.exporter.ExportRun(ctx, run); err != nil {
		return domain.RunResult{}, fmt.Errorf("export run: %w", err)
	}

	if r.publisher != nil {
		if err := r.publisher.PublishBatch(ctx, observations); err != nil {
			// Publishing is a best-effort side channel; the run's files are
			// already on disk, so log and continue.
			r.logger.Error("publish observations failed", "error", err, "rows", len(observations))
		} else {
			r.metrics.ObservationsPublished.Add(float64(len(observations)))
		}
	}

	r.logger.Info("run complete",
		"stations_selected", len(targets),
		"observations", len(observations),
		"missing_readings", missing,
		"advisories", len(advisories),
	)
	return run, nil
}

// Watch runs cycles on a fixed interval until the context is cancelled.
// Failed cycles retry with exponential backoff starting at 15s, doubling to a
// 10-minute cap, so an upstream outage does not turn into a tight loop.
func (r *Runner) Watch(ctx context.Context, interval time.Duration) error {
	r.logger.Info("watch loop started", "interval", interval)
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	backoff := 15 * time.Second
	maxBackoff := 10 * time.Minute

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			r.logger.Error("run failed", "error", err, "retry_in", backoff)
			if !sleepWithContext(ctx, backoff) {
				break
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = 15 * time.Second
		if !sleepWithContext(ctx, interval) {
			break
		}
	}

	r.logger.Info("watch loop stopping", "reason", ctx.Err())
	return nil
}

func (r *Runner) setLastRun(run domain.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastRun = &run
}

// selectedStations resolves the target set back to catalog rows, in set
// order, for reporting. IDs matched in the snapshot but absent from the
// catalog have no row to resolve.
func selectedStations(catalog domain.Catalog, targets domain.StationSet) []domain.Station {
	stations := make([]domain.Station, 0, len(targets))
	for _, id := range targets.IDs() {
		if station, ok := catalog.Lookup(id); ok {
			stations = append(stations, station)
		}
	}
	return stations
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
