package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Constants for coordinate calculations
const (
	DegreesToRadians = math.Pi / 180.0
	RadiansToDegrees = 180.0 / math.Pi

	// EarthRadiusMeters matches orb.EarthRadius, the radius used by Distance
	EarthRadiusMeters = 6378137.0

	// MetersPerDegree is the length of one degree of latitude
	MetersPerDegree = EarthRadiusMeters * DegreesToRadians

	FeetToMeters = 0.3048
	MetersToFeet = 1 / FeetToMeters
)

// Point is a WGS84 position in decimal degrees
type Point struct {
	Lat float64
	Lon float64
}

// Radians converts degrees to radians
func Radians(deg float64) float64 {
	return deg * DegreesToRadians
}

// Degrees converts radians to degrees
func Degrees(rad float64) float64 {
	return rad * RadiansToDegrees
}

// Orb converts p to an orb point (longitude first)
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Distance returns the great-circle distance between two points in meters (haversine)
func Distance(a, b Point) float64 {
	return orbgeo.DistanceHaversine(a.Orb(), b.Orb())
}

// Bearing returns the initial bearing from a to b in degrees [0, 360)
func Bearing(a, b Point) float64 {
	return NormalizeHeading(orbgeo.Bearing(a.Orb(), b.Orb()))
}

// NormalizeHeading maps an angle in degrees onto [0, 360)
func NormalizeHeading(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// NormalizeLongitude maps a longitude in degrees onto (-180, 180]
func NormalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon > 180 {
		lon -= 360
	} else if lon <= -180 {
		lon += 360
	}
	return lon
}

// AngleDiff returns the smallest absolute difference between two headings in degrees
func AngleDiff(a, b float64) float64 {
	d := math.Abs(NormalizeHeading(a) - NormalizeHeading(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}
