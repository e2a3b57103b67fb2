package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

// TestDistance tests great-circle distances against known values
func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point
		expected float64
		delta    float64
	}{
		{
			name:     "Same point",
			a:        Point{Lat: 52.0, Lon: 4.0},
			b:        Point{Lat: 52.0, Lon: 4.0},
			expected: 0,
			delta:    0.001,
		},
		{
			name:     "One degree of latitude",
			a:        Point{Lat: 0, Lon: 0},
			b:        Point{Lat: 1, Lon: 0},
			expected: MetersPerDegree,
			delta:    1,
		},
		{
			name:     "Amsterdam to London",
			a:        Point{Lat: 52.3086, Lon: 4.7639},
			b:        Point{Lat: 51.4700, Lon: -0.4543},
			expected: 370000,
			delta:    3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Distance(tt.a, tt.b), tt.delta)
			assert.InDelta(t, Distance(tt.a, tt.b), Distance(tt.b, tt.a), 1e-6)
		})
	}
}

// TestBearing tests initial bearings along the cardinal directions
func TestBearing(t *testing.T) {
	origin := Point{Lat: 10, Lon: 10}

	assert.InDelta(t, 0.0, Bearing(origin, Point{Lat: 11, Lon: 10}), 1e-9)
	assert.InDelta(t, 180.0, Bearing(origin, Point{Lat: 9, Lon: 10}), 1e-9)
	assert.InDelta(t, 90.0, Bearing(origin, Point{Lat: 10, Lon: 11}), 0.2)
	assert.InDelta(t, 270.0, Bearing(origin, Point{Lat: 10, Lon: 9}), 0.2)
}

// TestOrb tests the conversion to longitude-first orb points
func TestOrb(t *testing.T) {
	assert.Equal(t, orb.Point{4.5, 52.25}, Point{Lat: 52.25, Lon: 4.5}.Orb())
}

// TestNormalizeLongitude tests longitude wrapping onto (-180, 180]
func TestNormalizeLongitude(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{540, 180},
		{359.5, -0.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, NormalizeLongitude(tt.in), 1e-9, "input %.1f", tt.in)
	}
}

// TestAngleDiff tests the smallest heading difference
func TestAngleDiff(t *testing.T) {
	assert.InDelta(t, 20.0, AngleDiff(350, 10), 1e-9)
	assert.InDelta(t, 20.0, AngleDiff(10, 350), 1e-9)
	assert.InDelta(t, 180.0, AngleDiff(0, 180), 1e-9)
	assert.InDelta(t, 0.0, AngleDiff(-90, 270), 1e-9)
}

// TestISA tests standard atmosphere helpers
func TestISA(t *testing.T) {
	assert.InDelta(t, 15.0, ISATemperature(0), 1e-9)
	assert.InDelta(t, -56.5, ISATemperature(40000), 0.01)

	// At sea level CAS equals TAS
	assert.InDelta(t, MachToTAS(0.3, 0), MachToCAS(0.3, 0), 0.01)

	// M0.78 at FL350 is roughly 264 kt CAS and 450 kt TAS
	assert.InDelta(t, 264.0, MachToCAS(0.78, 35000), 3)
	assert.InDelta(t, 450.0, MachToTAS(0.78, 35000), 5)
}
