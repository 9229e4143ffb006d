package domain

import (
	"encoding/json"
	"fmt"
)

// CatalogPayload is the wire format of the station catalog endpoint: a
// spatial array and an attribute array sharing the same implicit row order.
type CatalogPayload struct {
	Geometry   []GeometryPoint   `json:"geometry"`
	Properties []StationProperty `json:"properties"`
}

// GeometryPoint holds one coordinate pair in [lon, lat] order.
type GeometryPoint struct {
	Coordinates []float64 `json:"coordinates"`
}

// StationProperty holds the attribute side of a catalog row. Codes arrive as
// JSON numbers in some deployments and strings in others; json.Number keeps
// the original digits either way.
type StationProperty struct {
	Code json.Number `json:"code"`
	Name string      `json:"name"`
}

// Station is one flattened catalog row. ID is the canonical text form of the
// station code.
type Station struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

// Catalog is the flattened station catalog with an ID lookup index.
type Catalog struct {
	Stations []Station

	byID map[string]Station
}

// MalformedCatalogError reports a catalog payload whose parallel arrays
// cannot be zipped into rows.
type MalformedCatalogError struct {
	GeometryLen int
	PropertyLen int
	Row         int // row index for per-row problems, -1 for length mismatch
	Reason      string
}

func (e *MalformedCatalogError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("malformed catalog: row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed catalog: %s (geometry=%d properties=%d)",
		e.Reason, e.GeometryLen, e.PropertyLen)
}

// BuildCatalog zips the payload's parallel arrays into Station rows.
// A length mismatch between the two arrays is a hard error; beyond that and
// the shape of each coordinate pair, no validation is performed. Coordinates
// are not range-checked.
func BuildCatalog(payload CatalogPayload) (Catalog, error) {
	if len(payload.Geometry) != len(payload.Properties) {
		return Catalog{}, &MalformedCatalogError{
			GeometryLen: len(payload.Geometry),
			PropertyLen: len(payload.Properties),
			Row:         -1,
			Reason:      "parallel array length mismatch",
		}
	}

	stations := make([]Station, 0, len(payload.Properties))
	for i, prop := range payload.Properties {
		coords := payload.Geometry[i].Coordinates
		if len(coords) != 2 {
			return Catalog{}, &MalformedCatalogError{
				GeometryLen: len(payload.Geometry),
				PropertyLen: len(payload.Properties),
				Row:         i,
				Reason:      fmt.Sprintf("coordinate pair has %d elements, want 2", len(coords)),
			}
		}
		stations = append(stations, Station{
			ID:   prop.Code.String(),
			Name: prop.Name,
			Lon:  coords[0],
			Lat:  coords[1],
		})
	}

	return NewCatalog(stations), nil
}

// NewCatalog wraps a station slice and builds the ID index.
func NewCatalog(stations []Station) Catalog {
	byID := make(map[string]Station, len(stations))
	for _, s := range stations {
		byID[s.ID] = s
	}
	return Catalog{Stations: stations, byID: byID}
}

// Lookup returns the station with the given ID, if present.
func (c Catalog) Lookup(id string) (Station, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Len returns the number of stations in the catalog.
func (c Catalog) Len() int {
	return len(c.Stations)
}
