package adsb

import (
	"math"

	"modes1090/internal/geo"
)

// DecodeAC13 decodes the 13-bit altitude code of DF0/4/16/20 replies.
//
// Bit layout (MSB first): C1 A1 C2 A2 C4 A4 M B1 Q B2 D2 B4 D4.
// M set means metric units, Q set means 25 ft resolution, otherwise the
// remaining 11 bits are a Gillham code.
func DecodeAC13(field uint16) (int, bool) {
	field &= 0x1FFF
	if field == 0 {
		return 0, false
	}

	if field&0x40 != 0 {
		meters := ((field & 0x1F80) >> 1) | (field & 0x3F)
		return int(math.Round(float64(meters) * geo.MetersToFeet)), true
	}

	n := ((field & 0x1F80) >> 2) | ((field & 0x20) >> 1) | (field & 0x0F)
	if field&0x10 != 0 {
		return int(n)*25 - 1000, true
	}
	return GillhamToFeet(n)
}

// DecodeAC12 decodes the 12-bit altitude code of airborne position squitters.
//
// Bit layout (MSB first): C1 A1 C2 A2 C4 A4 B1 Q B2 D2 B4 D4.
func DecodeAC12(field uint16) (int, bool) {
	field &= 0x0FFF
	if field == 0 {
		return 0, false
	}

	n := ((field & 0x0FE0) >> 1) | (field & 0x0F)
	if field&0x10 != 0 {
		return int(n)*25 - 1000, true
	}
	return GillhamToFeet(n)
}

// AC12 extracts the altitude code from an airborne position ME field
func AC12(me []byte) uint16 {
	return uint16(Bits(me, 9, 20))
}

// GNSSHeight decodes the altitude of TC 20-22 squitters, which carry GNSS
// height above the ellipsoid in meters. The result is in feet.
func GNSSHeight(me []byte) (int, bool) {
	raw := Bits(me, 9, 20)
	if raw == 0 {
		return 0, false
	}
	return int(math.Round(float64(raw) * geo.MetersToFeet)), true
}
