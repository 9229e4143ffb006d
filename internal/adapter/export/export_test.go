package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroclima/agromet-etl/internal/domain"
)

func testRun() domain.RunResult {
	return domain.RunResult{
		FetchedAt: time.Date(2025, 8, 10, 14, 30, 0, 0, time.UTC),
		Observations: []domain.Observation{
			{
				Timestamp:    "2025-08-10T14:00",
				StationID:    "330020",
				StationName:  "La Platina",
				Measurements: domain.Measurements{domain.ParamTemperature: 18.5},
				Missing:      []string{domain.ParamWindSpeed},
			},
			{
				Timestamp:    "2025-08-10T14:00",
				StationID:    "330021",
				StationName:  "Los Tilos",
				Measurements: domain.Measurements{domain.ParamTemperature: 17.1, domain.ParamWindSpeed: 8.0},
			},
		},
		ByTimestamp: []domain.TimestampSummary{
			{
				Timestamp: "2025-08-10T14:00",
				Stations:  2,
				Fields: map[string]domain.FieldStats{
					domain.ParamTemperature: {Count: 2, Mean: 17.8, Min: 17.1, Max: 18.5},
				},
			},
		},
	}
}

func TestFileExporter_ExportRun(t *testing.T) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 8, 10, 14, 30, 0, 0, time.UTC))
	exporter := NewFileExporter(dir, clock, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, exporter.ExportRun(context.Background(), testRun()))

	t.Run("observations csv", func(t *testing.T) {
		records := readCSV(t, filepath.Join(dir, "observations_20250810T143000.csv"))

		require.Len(t, records, 3)
		assert.Equal(t, []string{"timestamp", "station_id", "station_name", "temperatura", "velocidad_viento"}, records[0])
		assert.Equal(t, []string{"2025-08-10T14:00", "330020", "La Platina", "18.5", ""}, records[1])
		assert.Equal(t, []string{"2025-08-10T14:00", "330021", "Los Tilos", "17.1", "8"}, records[2])
	})

	t.Run("summary csv", func(t *testing.T) {
		records := readCSV(t, filepath.Join(dir, "summary_20250810T143000.csv"))

		require.Len(t, records, 2)
		assert.Equal(t, []string{"timestamp", "stations", "parameter", "count", "mean", "min", "max"}, records[0])
		assert.Equal(t, []string{"2025-08-10T14:00", "2", "temperatura", "2", "17.80", "17.1", "18.5"}, records[1])
	})

	t.Run("run json round-trips", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "run_20250810T143000.json"))
		require.NoError(t, err)

		var run domain.RunResult
		require.NoError(t, json.Unmarshal(data, &run))
		assert.Len(t, run.Observations, 2)
		assert.Equal(t, "La Platina", run.Observations[0].StationName)
	})
}

func TestFileExporter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	clock := clockwork.NewFakeClockAt(time.Unix(0, 0))
	exporter := NewFileExporter(dir, clock, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, exporter.ExportRun(context.Background(), domain.RunResult{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}
