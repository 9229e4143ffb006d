// Command validate checks a catalog fixture and a snapshot fixture for
// internal and cross-source consistency: the catalog must build, the
// snapshot must decode, snapshot timestamps must parse, and stations that
// report observations without a catalog entry are surfaced. The catalog and
// observation feeds are independently sourced, so orphan stations are
// reported as a warning count rather than a failure.
//
// Usage:
//
//	go run ./cmd/validate -catalog data/mock/estaciones.json -snapshot data/mock/mediciones.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/agroclima/agromet-etl/internal/domain"
)

// timestampLayout is the naive local-civil-time form used by the feed.
const timestampLayout = "2006-01-02T15:04"

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	catalogPath := flag.String("catalog", "", "path to a station catalog JSON fixture")
	snapshotPath := flag.String("snapshot", "", "path to an observation snapshot JSON fixture")
	flag.Parse()

	if *catalogPath == "" || *snapshotPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*catalogPath, *snapshotPath); code != 0 {
		os.Exit(code)
	}
}

func run(catalogPath, snapshotPath string) int {
	catalogPhase := &phase{name: "catalog"}
	catalog := validateCatalog(catalogPhase, catalogPath)

	snapshotPhase := &phase{name: "snapshot"}
	snapshot := validateSnapshot(snapshotPhase, snapshotPath)

	crossPhase := &phase{name: "cross-source"}
	if catalogPhase.passed() && snapshotPhase.passed() {
		validateCross(crossPhase, catalog, snapshot)
	}

	failed := 0
	for _, p := range []*phase{catalogPhase, snapshotPhase, crossPhase} {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, msg := range p.errors {
			fmt.Printf("  - %s\n", msg)
		}
	}
	return failed
}

func validateCatalog(p *phase, path string) domain.Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read catalog: %v", err)
		return domain.Catalog{}
	}

	var payload domain.CatalogPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		p.errorf("decode catalog: %v", err)
		return domain.Catalog{}
	}

	catalog, err := domain.BuildCatalog(payload)
	if err != nil {
		p.errorf("build catalog: %v", err)
		return domain.Catalog{}
	}
	if catalog.Len() == 0 {
		p.errorf("catalog is empty")
	}
	for _, station := range catalog.Stations {
		if station.Name == "" {
			p.errorf("station %s has an empty name", station.ID)
		}
	}
	return catalog
}

func validateSnapshot(p *phase, path string) domain.SnapshotPayload {
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read snapshot: %v", err)
		return nil
	}

	var snapshot domain.SnapshotPayload
	if err := json.Unmarshal(data, &snapshot); err != nil {
		p.errorf("decode snapshot: %v", err)
		return nil
	}
	if len(snapshot) == 0 {
		p.errorf("snapshot has no timestamps")
	}
	for timestamp := range snapshot {
		if _, err := time.Parse(timestampLayout, timestamp); err != nil {
			p.errorf("unparseable timestamp key %q", timestamp)
		}
	}
	return snapshot
}

// validateCross reports snapshot stations with no catalog entry and the
// overall sentinel rate.
func validateCross(p *phase, catalog domain.Catalog, snapshot domain.SnapshotPayload) {
	orphans := make(map[string]struct{})
	readings, sentinels := 0, 0

	for _, stations := range snapshot {
		for id, measurements := range stations {
			if _, ok := catalog.Lookup(id); !ok {
				orphans[id] = struct{}{}
			}
			for _, value := range measurements {
				readings++
				if value == domain.MissingSentinel {
					sentinels++
				}
			}
		}
	}

	if len(orphans) > 0 {
		ids := make([]string, 0, len(orphans))
		for id := range orphans {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Printf("WARN cross-source: %d station(s) report observations without a catalog entry: %v\n", len(ids), ids)
	}

	if readings == 0 {
		p.errorf("snapshot contains no readings")
		return
	}
	rate := float64(sentinels) / float64(readings)
	fmt.Printf("INFO sentinel rate: %.1f%% (%d of %d readings)\n", rate*100, sentinels, readings)
	if rate > 0.5 {
		p.errorf("sentinel rate %.1f%% exceeds 50%%; feed looks broken", rate*100)
	}
}
