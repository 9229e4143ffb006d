package domain

import "time"

// MissingSentinel is the feed's reserved literal for "no valid reading".
// Only an exact match counts; nearby values are real data.
const MissingSentinel = -99.0

// Canonical parameter names as they appear in the feed.
const (
	ParamTemperature   = "temperatura"
	ParamHumidity      = "humedad_relativa"
	ParamWindSpeed     = "velocidad_viento"
	ParamPrecipitation = "precipitacion"
)

// SnapshotPayload is the wire format of the observation endpoint: timestamp
// string → station ID → parameter → reading. A null station entry decodes to
// a nil inner map, which is how "no data this period" is distinguished from
// an empty measurement set.
type SnapshotPayload map[string]map[string]Measurements

// Measurements maps parameter names to numeric readings. Sentinel readings
// are removed during extraction; an absent parameter key is the explicit
// absent-value marker.
type Measurements map[string]float64

// Observation is one flattened (timestamp, station) row. Missing lists the
// parameters whose readings were the sentinel, so reliability reporting can
// count dropped readings without re-reading the snapshot.
type Observation struct {
	Timestamp    string       `json:"timestamp"`
	StationID    string       `json:"station_id"`
	StationName  string       `json:"station_name,omitempty"`
	Measurements Measurements `json:"measurements"`
	Missing      []string     `json:"missing,omitempty"`
}

// RunResult collects everything one pipeline pass produced. It is the unit
// the exporters, the report renderer, and the status endpoint consume.
type RunResult struct {
	FetchedAt    time.Time          `json:"fetched_at"`
	Selected     []Station          `json:"selected_stations"`
	Observations []Observation      `json:"observations"`
	ByTimestamp  []TimestampSummary `json:"by_timestamp"`
	ByStation    []StationSummary   `json:"by_station"`
	Advisories   []Advisory         `json:"advisories"`
}
