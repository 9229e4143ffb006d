package domain

import "strings"

// SelectStations returns the target set: stations inside the bounding box
// OR whose name contains any of the given substrings (case-insensitive).
// The union is deduplicated by station ID; a nil box and an empty substring
// list each disable that predicate. Both disabled selects nothing.
func SelectStations(catalog Catalog, box *BoundingBox, nameSubstrings []string) StationSet {
	lowered := make([]string, 0, len(nameSubstrings))
	for _, sub := range nameSubstrings {
		sub = strings.TrimSpace(sub)
		if sub != "" {
			lowered = append(lowered, strings.ToLower(sub))
		}
	}

	set := make(StationSet)
	for _, station := range catalog.Stations {
		if box != nil && box.Contains(station.Lon, station.Lat) {
			set[station.ID] = struct{}{}
			continue
		}
		if matchesAnyName(station.Name, lowered) {
			set[station.ID] = struct{}{}
		}
	}
	return set
}

func matchesAnyName(name string, loweredSubstrings []string) bool {
	if len(loweredSubstrings) == 0 {
		return false
	}
	name = strings.ToLower(name)
	for _, sub := range loweredSubstrings {
		if strings.Contains(name, sub) {
			return true
		}
	}
	return false
}
