package domain

import "sort"

// StationSet is a set of canonical (text) station identifiers.
type StationSet map[string]struct{}

// NewStationSet builds a set from identifiers already in text form.
func NewStationSet(ids ...string) StationSet {
	set := make(StationSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// IDs returns the set members in sorted order.
func (s StationSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Contains reports set membership.
func (s StationSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// ExtractObservations flattens a time-first snapshot into one row per
// (timestamp, station) pair where the station is in the target set and its
// entry is not null. Sentinel readings are translated to absent markers here,
// before any aggregation can touch them. Display names are resolved from the
// catalog; a station missing from the catalog keeps an empty name because the
// catalog and observation feeds are independently sourced and may be out of
// sync. An empty snapshot or a target set that intersects nothing yields an
// empty result, not an error.
//
// Each (timestamp, station) pair appears at most once in the source mapping,
// so the composite key is unique by construction. Rows come back sorted by
// (timestamp, station ID); callers doing time-series work should still sort
// explicitly rather than rely on this.
func ExtractObservations(snapshot SnapshotPayload, targets StationSet, catalog Catalog) []Observation {
	rows := make([]Observation, 0, len(snapshot)*len(targets))

	for timestamp, stations := range snapshot {
		for id, readings := range stations {
			if !targets.Contains(id) {
				continue
			}
			if readings == nil {
				// Explicit null entry: no data this period.
				continue
			}

			row := Observation{
				Timestamp:    timestamp,
				StationID:    id,
				Measurements: make(Measurements, len(readings)),
			}
			if station, ok := catalog.Lookup(id); ok {
				row.StationName = station.Name
			}
			for param, value := range readings {
				if value == MissingSentinel {
					row.Missing = append(row.Missing, param)
					continue
				}
				row.Measurements[param] = value
			}
			sort.Strings(row.Missing)
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Timestamp != rows[j].Timestamp {
			return rows[i].Timestamp < rows[j].Timestamp
		}
		return rows[i].StationID < rows[j].StationID
	})
	return rows
}
