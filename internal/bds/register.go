// Package bds infers which Comm-B register a DF20/21 MB field carries.
//
// Ground stations do not announce the register they interrogated, so every
// MB field is decoded under all supported registers and each hypothesis is
// checked for structural legality and for consistency with what is already
// known about the aircraft. A register is accepted only when exactly one
// hypothesis survives.
package bds

import (
	"modes1090/internal/adsb"
	"modes1090/internal/geo"
)

// Register identifies a Comm-B data selector
type Register int

// Supported registers
const (
	BDS05 Register = iota // extended squitter airborne position
	BDS08                 // extended squitter identification and category
	BDS09                 // extended squitter airborne velocity
	BDS10                 // data link capability
	BDS17                 // common usage GICB capability
	BDS20                 // aircraft identification
	BDS21                 // aircraft and airline registration
	BDS30                 // ACAS active resolution advisory
	BDS40                 // selected vertical intention
	BDS41                 // next waypoint identifier
	BDS44                 // meteorological routine air report
	BDS45                 // meteorological hazard report
	BDS50                 // track and turn report
	BDS51                 // position report coarse
	BDS53                 // air-referenced state vector
	BDS60                 // heading and speed report

	NumRegisters
)

var registerNames = [NumRegisters]string{
	"0,5", "0,8", "0,9", "1,0", "1,7", "2,0", "2,1", "3,0",
	"4,0", "4,1", "4,4", "4,5", "5,0", "5,1", "5,3", "6,0",
}

func (r Register) String() string {
	if r < 0 || r >= NumRegisters {
		return "unknown"
	}
	return registerNames[r]
}

// MBBytes is the length of an MB field
const MBBytes = 7

// Known is an optional value
type Known[T any] struct {
	Value T
	OK    bool
}

// Some wraps a present value
func Some[T any](v T) Known[T] {
	return Known[T]{Value: v, OK: true}
}

// Prior holds the aircraft state known before the frame being decoded.
// Hypotheses that contradict it beyond the tolerances are implausible.
type Prior struct {
	Callsign     Known[string]
	Altitude     Known[int] // feet
	Position     Known[geo.Point]
	GroundSpeed  Known[float64] // knots
	Track        Known[float64]
	Heading      Known[float64]
	IAS          Known[float64]
	TAS          Known[float64]
	Mach         Known[float64]
	VerticalRate Known[int]     // ft/min
	Temperature  Known[float64] // Celsius
}

// Tolerances bound the disagreement allowed between a hypothesis and Prior
type Tolerances struct {
	Speed        float64 // knots
	Angle        float64 // degrees of heading or track
	Altitude     int     // feet
	Mach         float64
	VerticalRate int     // ft/min
	Temperature  float64 // Celsius
	MachIAS      float64 // knots between IAS and the CAS implied by Mach
	ISADeviation float64 // Celsius from the standard atmosphere
	Position     float64 // meters
}

// DefaultTolerances returns the standard consistency limits
func DefaultTolerances() Tolerances {
	return Tolerances{
		Speed:        50,
		Angle:        20,
		Altitude:     1500,
		Mach:         0.1,
		VerticalRate: 2000,
		Temperature:  10,
		MachIAS:      20,
		ISADeviation: 40,
		Position:     20e3,
	}
}

// wrongStatus reports a status bit that is clear while its data bits are not
func wrongStatus(mb []byte, status, first, last int) bool {
	return !adsb.Bit(mb, status) && adsb.Bits(mb, first, last) != 0
}

func isZero(mb []byte) bool {
	for _, b := range mb {
		if b != 0 {
			return false
		}
	}
	return true
}

// field returns bits first..last when the status bit is set
func field(mb []byte, status, first, last int) Known[int] {
	if !adsb.Bit(mb, status) {
		return Known[int]{}
	}
	return Some(int(adsb.Bits(mb, first, last)))
}

// signedField returns the two's complement value of bits first..last
// when the status bit is set
func signedField(mb []byte, status, first, last int) Known[int] {
	if !adsb.Bit(mb, status) {
		return Known[int]{}
	}
	return Some(adsb.TwosComplement(mb, first, last))
}

func scaled(k Known[int], lsb float64) Known[float64] {
	if !k.OK {
		return Known[float64]{}
	}
	return Some(float64(k.Value) * lsb)
}

func angle(k Known[int], lsb float64) Known[float64] {
	if !k.OK {
		return Known[float64]{}
	}
	return Some(geo.NormalizeHeading(float64(k.Value) * lsb))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Consistency checks against Prior. Each reports false when both values are
// known and disagree beyond the tolerance.

func speedOK(v, prior Known[float64], tol Tolerances) bool {
	return !v.OK || !prior.OK || abs(v.Value-prior.Value) <= tol.Speed
}

func angleOK(v, prior Known[float64], tol Tolerances) bool {
	return !v.OK || !prior.OK || geo.AngleDiff(v.Value, prior.Value) <= tol.Angle
}

func altitudeOK(v, prior Known[int], tol Tolerances) bool {
	return !v.OK || !prior.OK || absInt(v.Value-prior.Value) <= tol.Altitude
}

func verticalRateOK(v, prior Known[int], tol Tolerances) bool {
	return !v.OK || !prior.OK || absInt(v.Value-prior.Value) <= tol.VerticalRate
}

func machOK(v, prior Known[float64], tol Tolerances) bool {
	return !v.OK || !prior.OK || abs(v.Value-prior.Value) <= tol.Mach
}

func temperatureOK(v Known[float64], prior Prior, tol Tolerances) bool {
	if !v.OK {
		return true
	}
	if prior.Temperature.OK && abs(v.Value-prior.Temperature.Value) > tol.Temperature {
		return false
	}
	if prior.Altitude.OK && abs(v.Value-geo.ISATemperature(float64(prior.Altitude.Value))) > tol.ISADeviation {
		return false
	}
	return true
}
