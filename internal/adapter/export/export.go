// Package export writes a run's working tables to flat files: delimited
// per-observation detail, a delimited per-timestamp summary, and a JSON
// snapshot of the whole run.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/jonboulle/clockwork"

	"github.com/agroclima/agromet-etl/internal/domain"
)

// fileStamp formats run timestamps into filename-safe stamps.
const fileStamp = "20060102T150405"

// FileExporter writes run results under a base directory, one trio of files
// per run, stamped from the injected clock.
type FileExporter struct {
	dir    string
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewFileExporter creates an exporter rooted at dir. The directory is
// created on first export.
func NewFileExporter(dir string, clock clockwork.Clock, logger *slog.Logger) *FileExporter {
	return &FileExporter{dir: dir, clock: clock, logger: logger}
}

// ExportRun writes observations.csv, summary.csv, and run.json for one run.
func (e *FileExporter) ExportRun(_ context.Context, run domain.RunResult) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	stamp := e.clock.Now().UTC().Format(fileStamp)

	obsPath := filepath.Join(e.dir, fmt.Sprintf("observations_%s.csv", stamp))
	if err := writeObservationsCSV(obsPath, run.Observations); err != nil {
		return err
	}

	summaryPath := filepath.Join(e.dir, fmt.Sprintf("summary_%s.csv", stamp))
	if err := writeSummaryCSV(summaryPath, run.ByTimestamp); err != nil {
		return err
	}

	runPath := filepath.Join(e.dir, fmt.Sprintf("run_%s.json", stamp))
	if err := writeRunJSON(runPath, run); err != nil {
		return err
	}

	e.logger.Info("run exported",
		"observations", obsPath,
		"summary", summaryPath,
		"snapshot", runPath,
	)
	return nil
}

// writeObservationsCSV writes one row per observation. Parameter columns are
// the sorted union of parameters seen across the run; an absent reading is an
// empty cell.
func writeObservationsCSV(path string, observations []domain.Observation) error {
	params := parameterUnion(observations)

	header := append([]string{"timestamp", "station_id", "station_name"}, params...)
	records := make([][]string, 0, len(observations)+1)
	records = append(records, header)

	for _, row := range observations {
		record := []string{row.Timestamp, row.StationID, row.StationName}
		for _, param := range params {
			value, ok := row.Measurements[param]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(value, 'f', -1, 64))
		}
		records = append(records, record)
	}

	return writeCSV(path, records)
}

// writeSummaryCSV writes one row per (timestamp, parameter) with
// absent-ignoring statistics.
func writeSummaryCSV(path string, summaries []domain.TimestampSummary) error {
	records := [][]string{{"timestamp", "stations", "parameter", "count", "mean", "min", "max"}}

	for _, summary := range summaries {
		params := make([]string, 0, len(summary.Fields))
		for param := range summary.Fields {
			params = append(params, param)
		}
		sort.Strings(params)

		for _, param := range params {
			stats := summary.Fields[param]
			records = append(records, []string{
				summary.Timestamp,
				strconv.Itoa(summary.Stations),
				param,
				strconv.Itoa(stats.Count),
				strconv.FormatFloat(stats.Mean, 'f', 2, 64),
				strconv.FormatFloat(stats.Min, 'f', -1, 64),
				strconv.FormatFloat(stats.Max, 'f', -1, 64),
			})
		}
	}

	return writeCSV(path, records)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeRunJSON(path string, run domain.RunResult) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func parameterUnion(observations []domain.Observation) []string {
	seen := make(map[string]struct{})
	for _, row := range observations {
		for param := range row.Measurements {
			seen[param] = struct{}{}
		}
		for _, param := range row.Missing {
			seen[param] = struct{}{}
		}
	}
	params := make([]string, 0, len(seen))
	for param := range seen {
		params = append(params, param)
	}
	sort.Strings(params)
	return params
}
