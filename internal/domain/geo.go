package domain

import "math"

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0

// BoundingBox is an inclusive rectangular geographic filter in decimal degrees.
type BoundingBox struct {
	West  float64 `json:"west"`
	East  float64 `json:"east"`
	South float64 `json:"south"`
	North float64 `json:"north"`
}

// Contains reports whether the point falls inside the box. Bounds are
// inclusive: a station exactly on an edge is in.
func (b BoundingBox) Contains(lon, lat float64) bool {
	return lon >= b.West && lon <= b.East && lat >= b.South && lat <= b.North
}

// Distance returns the haversine great-circle distance between two points in
// kilometers, rounded to one decimal place. NaN inputs propagate to a NaN
// result.
func Distance(aLat, aLon, bLat, bLon float64) float64 {
	lat1 := aLat * math.Pi / 180
	lat2 := bLat * math.Pi / 180
	dLat := (bLat - aLat) * math.Pi / 180
	dLon := (bLon - aLon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	d := 2 * earthRadiusKm * math.Asin(math.Sqrt(h))

	return math.Round(d*10) / 10
}
