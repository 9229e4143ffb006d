package domain

import "sort"

// FieldStats holds absent-ignoring statistics for one parameter within a
// group. Count is the number of present readings; Mean/Min/Max are undefined
// (zero) when Count is 0, and callers must check Count first.
type FieldStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// TimestampSummary is the regional snapshot for one observation period.
type TimestampSummary struct {
	Timestamp string                `json:"timestamp"`
	Stations  int                   `json:"stations"`
	Fields    map[string]FieldStats `json:"fields"`
}

// StationSummary is the per-station reliability view across the run.
type StationSummary struct {
	StationID       string                `json:"station_id"`
	StationName     string                `json:"station_name,omitempty"`
	Rows            int                   `json:"rows"`
	MissingReadings int                   `json:"missing_readings"`
	Fields          map[string]FieldStats `json:"fields"`
}

// SummarizeByTimestamp groups observations by timestamp and computes field
// statistics over present readings only. Results are sorted by timestamp.
func SummarizeByTimestamp(observations []Observation) []TimestampSummary {
	groups := make(map[string][]Observation)
	for _, row := range observations {
		groups[row.Timestamp] = append(groups[row.Timestamp], row)
	}

	summaries := make([]TimestampSummary, 0, len(groups))
	for timestamp, rows := range groups {
		summaries = append(summaries, TimestampSummary{
			Timestamp: timestamp,
			Stations:  len(rows),
			Fields:    fieldStats(rows),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Timestamp < summaries[j].Timestamp
	})
	return summaries
}

// SummarizeByStation groups observations by station and computes field
// statistics plus the count of sentinel-dropped readings. Results are sorted
// by station ID.
func SummarizeByStation(observations []Observation) []StationSummary {
	groups := make(map[string][]Observation)
	for _, row := range observations {
		groups[row.StationID] = append(groups[row.StationID], row)
	}

	summaries := make([]StationSummary, 0, len(groups))
	for id, rows := range groups {
		missing := 0
		for _, row := range rows {
			missing += len(row.Missing)
		}
		summaries = append(summaries, StationSummary{
			StationID:       id,
			StationName:     rows[0].StationName,
			Rows:            len(rows),
			MissingReadings: missing,
			Fields:          fieldStats(rows),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StationID < summaries[j].StationID
	})
	return summaries
}

// fieldStats folds present readings across rows into per-parameter stats.
func fieldStats(rows []Observation) map[string]FieldStats {
	stats := make(map[string]FieldStats)
	for _, row := range rows {
		for param, value := range row.Measurements {
			s, seen := stats[param]
			if !seen {
				stats[param] = FieldStats{Count: 1, Mean: value, Min: value, Max: value}
				continue
			}
			s.Mean = (s.Mean*float64(s.Count) + value) / float64(s.Count+1)
			s.Count++
			if value < s.Min {
				s.Min = value
			}
			if value > s.Max {
				s.Max = value
			}
			stats[param] = s
		}
	}
	return stats
}
