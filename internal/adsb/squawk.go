package adsb

import "fmt"

// DecodeSquawk decodes a 13-bit identity field laid out (MSB first) as
// C1 A1 C2 A2 C4 A4 X B1 D1 B2 D2 B4 D4 into its four octal digits
func DecodeSquawk(id uint16) string {
	bit := func(n uint) uint16 { return (id >> n) & 1 }

	a := bit(11) | bit(9)<<1 | bit(7)<<2
	b := bit(5) | bit(3)<<1 | bit(1)<<2
	c := bit(12) | bit(10)<<1 | bit(8)<<2
	d := bit(4) | bit(2)<<1 | bit(0)<<2

	return fmt.Sprintf("%d%d%d%d", a, b, c, d)
}

// Emergency squawks
const (
	SquawkHijack       = "7500"
	SquawkRadioFailure = "7600"
	SquawkEmergency    = "7700"
)

// SquawkEmergencyName names the emergency condition implied by a squawk, if any
func SquawkEmergencyName(squawk string) (string, bool) {
	switch squawk {
	case SquawkHijack:
		return "unlawful interference", true
	case SquawkRadioFailure:
		return "no communications", true
	case SquawkEmergency:
		return "general emergency", true
	}
	return "", false
}
