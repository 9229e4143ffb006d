// Command agromet runs the observation pipeline.
//
// One-shot (default) fetches the catalog and snapshot once, prints the run
// report to standard output, and writes the flat-file exports. Watch mode
// (-watch) runs the pipeline on the configured interval and serves health,
// readiness, metrics, and last-run endpoints over HTTP.
//
// All configuration comes from environment variables; see internal/config.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agroclima/agromet-etl/internal/adapter/agromet"
	"github.com/agroclima/agromet-etl/internal/adapter/export"
	httpadapter "github.com/agroclima/agromet-etl/internal/adapter/http"
	kafkaadapter "github.com/agroclima/agromet-etl/internal/adapter/kafka"
	"github.com/agroclima/agromet-etl/internal/config"
	"github.com/agroclima/agromet-etl/internal/observability"
	"github.com/agroclima/agromet-etl/internal/pipeline"
	"github.com/agroclima/agromet-etl/internal/report"
	"github.com/jonboulle/clockwork"
)

func main() {
	watch := flag.Bool("watch", false, "run continuously on WATCH_INTERVAL and serve HTTP status endpoints")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	client := agromet.NewClient(cfg.AgrometBaseURL, cfg.AgrometTimeout, metrics, logger)
	var catalogs pipeline.CatalogFetcher = client
	if *watch {
		catalogs = agromet.NewCachedCatalogFetcher(client, cfg.CatalogCacheTTL, clock, metrics)
	}

	exporter := export.NewFileExporter(cfg.ExportDir, clock, logger)

	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	runner := pipeline.New(catalogs, client, exporter, publisher, cfg, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *watch {
		runService(ctx, cfg, runner, writer, logger)
		return
	}

	run, err := runner.RunOnce(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		closeWriter(writer, logger)
		os.Exit(1)
	}
	if err := report.Render(os.Stdout, run); err != nil {
		logger.Error("render report failed", "error", err)
	}
	closeWriter(writer, logger)
}

// runService runs the watch loop and HTTP server until a signal arrives.
func runService(ctx context.Context, cfg *config.Config, runner *pipeline.Runner, writer *kafkaadapter.Writer, logger *slog.Logger) {
	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := runner.Watch(ctx, cfg.WatchInterval); err != nil {
			logger.Error("watch loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	closeWriter(writer, logger)

	logger.Info("shutdown complete")
}

func closeWriter(writer *kafkaadapter.Writer, logger *slog.Logger) {
	if writer == nil {
		return
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
}
