package adsb

import (
	"math"

	"modes1090/internal/geo"
)

// Velocity is the content of a TC 19 airborne velocity squitter.
// Each Has* flag reports whether the matching value was present.
type Velocity struct {
	Subtype uint8

	GroundSpeed    float64 // knots
	Track          float64 // degrees true
	HasGroundSpeed bool

	Airspeed    int  // knots
	AirspeedTAS bool // true airspeed rather than indicated
	HasAirspeed bool
	Heading     float64
	HasHeading  bool

	VerticalRate     int  // ft/min, positive up
	VerticalRateGNSS bool // GNSS rather than barometric source
	HasVerticalRate  bool

	GNSSBaroDiff    int // GNSS minus barometric altitude, feet
	HasGNSSBaroDiff bool
}

// DecodeVelocity decodes a TC 19 ME field. Subtypes 1 and 2 carry ground
// speed, 3 and 4 airspeed and heading; 2 and 4 are the supersonic variants.
func DecodeVelocity(me []byte) (Velocity, bool) {
	v := Velocity{Subtype: uint8(Bits(me, 6, 8))}
	if v.Subtype < 1 || v.Subtype > 4 {
		return v, false
	}

	scale := 1
	if v.Subtype == 2 || v.Subtype == 4 {
		scale = 4
	}

	switch v.Subtype {
	case 1, 2:
		ew := Bits(me, 15, 24)
		ns := Bits(me, 26, 35)
		if ew != 0 && ns != 0 {
			vEW := float64((int(ew) - 1) * scale)
			vNS := float64((int(ns) - 1) * scale)
			if Bit(me, 14) {
				vEW = -vEW
			}
			if Bit(me, 25) {
				vNS = -vNS
			}
			v.GroundSpeed = math.Hypot(vEW, vNS)
			v.Track = geo.NormalizeHeading(geo.Degrees(math.Atan2(vEW, vNS)))
			v.HasGroundSpeed = true
		}
	case 3, 4:
		if Bit(me, 14) {
			v.Heading = float64(Bits(me, 15, 24)) * 360 / 1024
			v.HasHeading = true
		}
		if as := Bits(me, 26, 35); as != 0 {
			v.Airspeed = (int(as) - 1) * scale
			v.AirspeedTAS = Bit(me, 25)
			v.HasAirspeed = true
		}
	}

	if vr := Bits(me, 38, 46); vr != 0 {
		v.VerticalRate = (int(vr) - 1) * 64
		if Bit(me, 37) {
			v.VerticalRate = -v.VerticalRate
		}
		v.VerticalRateGNSS = !Bit(me, 36)
		v.HasVerticalRate = true
	}

	if diff := Bits(me, 50, 56); diff != 0 {
		v.GNSSBaroDiff = (int(diff) - 1) * 25
		if Bit(me, 49) {
			v.GNSSBaroDiff = -v.GNSSBaroDiff
		}
		v.HasGNSSBaroDiff = true
	}

	return v, true
}
