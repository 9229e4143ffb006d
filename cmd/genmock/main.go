// Command genmock generates deterministic catalog and snapshot JSON fixtures
// shaped like the agromet API responses, for tests and local development.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock -stations 6 -hours 4 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/agroclima/agromet-etl/internal/domain"
)

// baseTime anchors snapshot timestamps so fixtures are reproducible.
var baseTime = time.Date(2025, time.August, 10, 8, 0, 0, 0, time.UTC)

// stationNames is a fixed pool to draw fixture stations from.
var stationNames = []string{
	"La Platina", "Los Tilos", "Curicó Norte", "Chillán Viejo",
	"San Clemente", "Graneros", "Sagrada Familia", "Quillota Centro",
	"Punta de Parra", "Huasco Bajo",
}

// sentinelRate is the fraction of readings replaced with the missing-value
// sentinel, and nullRate the fraction of station periods emitted as null.
const (
	sentinelRate = 0.1
	nullRate     = 0.05
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "output directory for fixture files")
	stations := flag.Int("stations", 6, "number of stations to generate")
	hours := flag.Int("hours", 4, "number of hourly timestamps in the snapshot")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}
	if *stations < 1 || *stations > len(stationNames) {
		return fmt.Errorf("-stations must be between 1 and %d", len(stationNames))
	}

	rng := rand.New(rand.NewSource(*seed))

	catalog := generateCatalog(rng, *stations)
	snapshot := generateSnapshot(rng, catalog, *hours)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	if err := writeJSON(filepath.Join(*outDir, "estaciones.json"), catalog); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(*outDir, "mediciones.json"), snapshot); err != nil {
		return err
	}

	fmt.Printf("wrote %d stations × %d timestamps to %s\n", *stations, *hours, *outDir)
	return nil
}

// generateCatalog builds a parallel-array catalog payload over central Chile.
func generateCatalog(rng *rand.Rand, count int) domain.CatalogPayload {
	payload := domain.CatalogPayload{
		Geometry:   make([]domain.GeometryPoint, 0, count),
		Properties: make([]domain.StationProperty, 0, count),
	}
	for i := 0; i < count; i++ {
		lon := -72.5 + rng.Float64()*2.5 // -72.5 .. -70.0
		lat := -36.0 + rng.Float64()*3.0 // -36.0 .. -33.0
		payload.Geometry = append(payload.Geometry, domain.GeometryPoint{
			Coordinates: []float64{round2(lon), round2(lat)},
		})
		payload.Properties = append(payload.Properties, domain.StationProperty{
			Code: json.Number(fmt.Sprintf("%d", 330020+i)),
			Name: stationNames[i],
		})
	}
	return payload
}

// generateSnapshot builds a time-first snapshot with realistic readings,
// sprinkling sentinel values and null station periods at fixed rates.
func generateSnapshot(rng *rand.Rand, catalog domain.CatalogPayload, hours int) domain.SnapshotPayload {
	snapshot := make(domain.SnapshotPayload, hours)
	for h := 0; h < hours; h++ {
		timestamp := baseTime.Add(time.Duration(h) * time.Hour).Format("2006-01-02T15:04")
		periods := make(map[string]domain.Measurements, len(catalog.Properties))

		for _, prop := range catalog.Properties {
			if rng.Float64() < nullRate {
				periods[prop.Code.String()] = nil
				continue
			}
			periods[prop.Code.String()] = domain.Measurements{
				domain.ParamTemperature:   reading(rng, 2, 34),
				domain.ParamHumidity:      reading(rng, 30, 95),
				domain.ParamWindSpeed:     reading(rng, 0, 28),
				domain.ParamPrecipitation: reading(rng, 0, 4),
			}
		}
		snapshot[timestamp] = periods
	}
	return snapshot
}

func reading(rng *rand.Rand, lo, hi float64) float64 {
	if rng.Float64() < sentinelRate {
		return domain.MissingSentinel
	}
	return round2(lo + rng.Float64()*(hi-lo))
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
