// Package domain models agrometeorological station observations.
//
// # Data Source
//
// Data comes from a public agromet REST API exposing two JSON endpoints: a
// station catalog and a rolling observation snapshot. The catalog separates
// a spatial section (an array of coordinate pairs) from an attribute section
// (an array of station code + name records); the two arrays are parallel and
// share the same implicit row order. The snapshot is time-first: the outer
// object is keyed by a naive local-civil-time timestamp string, each value is
// an object keyed by station identifier, and each station entry is either
// null (no data for that period) or an object of parameter name to numeric
// reading.
//
// # Station Identifiers
//
// The upstream feeds are inconsistent about identifier types: catalog codes
// arrive as JSON numbers while snapshot keys are strings. Identifiers are
// never arithmetically combined, so the canonical representation is text.
// Catalog codes are normalized to their string form once, at the catalog
// boundary; everything downstream compares strings.
//
// # Missing Readings
//
// The feed uses the sentinel value -99.0 for "no valid reading". The
// extractor translates sentinel readings into explicit absent markers before
// any aggregation runs, so statistics never see -99.0 as a real extreme low.
// Only the exact value -99.0 is a sentinel; -98.9 and -99.01 are legitimate
// readings and pass through unchanged.
//
// # Parameter Names
//
// Parameter names are carried verbatim from the feed (Spanish):
// "temperatura" (°C), "humedad_relativa" (%), "velocidad_viento" (km/h),
// "precipitacion" (mm). Advisory thresholds are keyed on these names.
package domain
