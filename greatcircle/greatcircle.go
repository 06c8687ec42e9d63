// Package greatcircle provides spherical geometry on the mean-radius
// Earth sphere: the direct geodesic (destination point) formula and the
// haversine distance formula.
package greatcircle

import (
	"math"

	"github.com/hupe1980/geoquad/geom"
)

const (
	// EarthRadiusKm is the mean radius of the reference sphere.
	EarthRadiusKm = 6371.0

	// HalfEarthCircumferenceKm is the distance between two antipodal
	// points. Any search radius at or above this value covers the
	// entire sphere.
	HalfEarthCircumferenceKm = math.Pi * EarthRadiusKm
)

// PointAtBearing computes the destination reached by travelling
// distanceKm from origin along the initial bearing bearingDeg
// (degrees clockwise from north) on a great circle.
//
// The resulting longitude is not normalized to [-180,180); callers that
// need a canonical longitude must normalize it themselves. Inputs are
// assumed finite (caller's responsibility).
func PointAtBearing(origin geom.Point, distanceKm, bearingDeg float64) geom.Point {
	lat1 := degToRad(origin.Lat)
	lon1 := degToRad(origin.Lon)
	bearing := degToRad(bearingDeg)
	angular := distanceKm / EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) +
		math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2))

	return geom.Point{Lat: radToDeg(lat2), Lon: radToDeg(lon2)}
}

// DistanceKm returns the great-circle distance in kilometres between a
// and b, computed with the haversine formula (the inverse of
// PointAtBearing).
func DistanceKm(a, b geom.Point) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	rLat1 := degToRad(a.Lat)
	rLat2 := degToRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }
