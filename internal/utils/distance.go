package utils

import "math"

// MetersPerDegree is the planar approximation used for trip distance: one
// degree of latitude or longitude is treated as ~111,320 meters.
const MetersPerDegree = 111320.0

// PlanarDistanceMeters converts the degree delta between two samples into
// meters using the planar approximation. Good enough for odometer-style trip
// totals over the short hops GPS sampling produces.
func PlanarDistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * MetersPerDegree
	dLon := (lon2 - lon1) * MetersPerDegree
	return math.Sqrt(dLat*dLat + dLon*dLon)
}
