// Package geo computes great-circle distances between coordinate pairs.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Distance returns the haversine great-circle distance in meters between
// two points given in decimal degrees. Inputs are assumed pre-validated.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// WithinRadius reports whether the point (lat, lng) lies within
// radiusMeters of the point (centerLat, centerLng).
func WithinRadius(centerLat, centerLng, lat, lng float64, radiusMeters int) bool {
	return Distance(centerLat, centerLng, lat, lng) <= float64(radiusMeters)
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
