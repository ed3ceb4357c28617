// Package geocode resolves coordinates to human-readable place names.
// Lookups are best-effort enrichment: a failure never blocks report
// submission, the caller falls back to raw coordinates.
package geocode

import "context"

// Geocoder converts WGS-84 coordinates into a display name.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}
