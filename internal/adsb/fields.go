package adsb

import "strings"

// DecodeChars decodes n 6-bit characters of data starting at bit first
// (1-based). It fails when any code has no printable mapping.
func DecodeChars(data []byte, first, n int) (string, bool) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		start := first + i*6
		c := Charset[Bits(data, start, start+5)]
		if c == '#' {
			return "", false
		}
		sb.WriteByte(c)
	}
	return strings.TrimRight(sb.String(), " "), true
}

// DecodeCallsign decodes the 8-character callsign of an identification ME
// field (TC 1-4) or a BDS 2,0 MB field
func DecodeCallsign(me []byte) (string, bool) {
	cs, ok := DecodeChars(me, 9, 8)
	if !ok || cs == "" {
		return "", false
	}
	return cs, true
}

var categoryNames = map[uint8][8]string{
	4: {"", "Light", "Small", "Large", "High vortex large",
		"Heavy", "High performance", "Rotorcraft"},
	3: {"", "Glider/sailplane", "Lighter-than-air", "Parachutist/skydiver",
		"Ultralight/hang-glider/paraglider", "Reserved", "UAV", "Space vehicle"},
	2: {"", "Surface emergency vehicle", "Surface service vehicle",
		"Fixed ground or tethered obstruction", "Cluster obstacle",
		"Line obstacle", "Reserved", "Reserved"},
}

// DecodeCategory returns the emitter category of an identification ME field.
// TC 4, 3 and 2 select category sets A, B and C; TC 1 is reserved.
// A category code of 0 means no information.
func DecodeCategory(me []byte) (string, bool) {
	tc := uint8(Bits(me, 1, 5))
	ec := uint8(Bits(me, 6, 8))
	names, ok := categoryNames[tc]
	if !ok || ec == 0 {
		return "", false
	}
	return names[ec], true
}

// CategoryCode returns the compact emitter category such as "A3"
func CategoryCode(me []byte) (string, bool) {
	tc := uint8(Bits(me, 1, 5))
	ec := uint8(Bits(me, 6, 8))
	if tc < 2 || tc > 4 || ec == 0 {
		return "", false
	}
	return string(rune('A'+4-tc)) + string(rune('0'+ec)), true
}

// CPRFields extracts the CPR sample carried by a position ME field
func CPRFields(me []byte) (lat, lon uint32, odd bool) {
	return uint32(Bits(me, 23, 39)), uint32(Bits(me, 40, 56)), Bit(me, 22)
}

// movementSteps quantises surface speed: codes first..last start at startKt
// and grow by step knots per code
var movementSteps = []struct {
	first, last   uint64
	startKt, step float64
}{
	{2, 8, 0.125, 0.125},
	{9, 12, 1, 0.25},
	{13, 38, 2, 0.5},
	{39, 93, 15, 1},
	{94, 108, 70, 2},
	{109, 123, 100, 5},
}

// DecodeMovement decodes the surface movement field of TC 5-8 into knots.
// Code 1 means stopped and 124 means 175 kt or more.
func DecodeMovement(me []byte) (float64, bool) {
	mov := Bits(me, 6, 12)
	switch {
	case mov == 1:
		return 0, true
	case mov == 124:
		return 175, true
	}
	for _, b := range movementSteps {
		if mov >= b.first && mov <= b.last {
			return b.startKt + float64(mov-b.first)*b.step, true
		}
	}
	return 0, false
}

// DecodeGroundTrack decodes the surface track field of TC 5-8 in degrees
func DecodeGroundTrack(me []byte) (float64, bool) {
	if !Bit(me, 13) {
		return 0, false
	}
	return float64(Bits(me, 14, 20)) * 360 / 128, true
}

// ResolutionAdvisory is an ACAS resolution advisory report
type ResolutionAdvisory struct {
	ARA            uint16 // active resolution advisories, 14 bits
	RAC            uint8  // resolution advisory complements, 4 bits
	Terminated     bool
	MultipleThreat bool
	ThreatType     uint8  // 0 none, 1 address, 2 range/bearing/altitude
	ThreatID       uint32 // raw 26-bit threat identity data
}

// Active reports whether the advisory carries any active sense
func (ra ResolutionAdvisory) Active() bool {
	return ra.ARA != 0 && !ra.Terminated
}

// ThreatAddress returns the intruder address when the threat is identified by address
func (ra ResolutionAdvisory) ThreatAddress() (uint32, bool) {
	if ra.ThreatType != 1 {
		return 0, false
	}
	return ra.ThreatID >> 2, true
}

// DecodeRA decodes the resolution advisory layout shared by BDS 3,0, DF16 MV
// and TC 28 subtype 2: ARA in bits 9-22, RAC 23-26, RAT 27, MTE 28, TTI 29-30
// and TID 31-56
func DecodeRA(mb []byte) ResolutionAdvisory {
	return ResolutionAdvisory{
		ARA:            uint16(Bits(mb, 9, 22)),
		RAC:            uint8(Bits(mb, 23, 26)),
		Terminated:     Bit(mb, 27),
		MultipleThreat: Bit(mb, 28),
		ThreatType:     uint8(Bits(mb, 29, 30)),
		ThreatID:       uint32(Bits(mb, 31, 56)),
	}
}

var emergencyNames = [8]string{
	"none", "general emergency", "lifeguard/medical", "minimum fuel",
	"no communications", "unlawful interference", "downed aircraft", "reserved",
}

// AircraftStatus is the content of a TC 28 squitter
type AircraftStatus struct {
	Subtype   uint8
	Emergency string
	Squawk    string
	RA        ResolutionAdvisory
}

// DecodeAircraftStatus decodes a TC 28 ME field. Subtype 1 carries the
// emergency state and squawk, subtype 2 a TCAS resolution advisory.
func DecodeAircraftStatus(me []byte) (AircraftStatus, bool) {
	st := AircraftStatus{Subtype: uint8(Bits(me, 6, 8))}
	switch st.Subtype {
	case 1:
		st.Emergency = emergencyNames[Bits(me, 9, 11)]
		st.Squawk = DecodeSquawk(uint16(Bits(me, 12, 24)))
	case 2:
		st.RA = DecodeRA(me)
	default:
		return st, false
	}
	return st, true
}

// Modes holds the autopilot and guidance mode flags of a target state report
type Modes struct {
	Autopilot    bool
	VNAV         bool
	AltitudeHold bool
	Approach     bool
	LNAV         bool
	TCAS         bool
}

// TargetState is the content of a TC 29 subtype 1 squitter.
// Each Has* flag reports whether the matching value was present.
type TargetState struct {
	SelectedAltitude    int
	SelectedAltitudeFMS bool
	HasSelectedAltitude bool
	BaroSetting         float64 // hPa
	HasBaroSetting      bool
	SelectedHeading     float64
	HasSelectedHeading  bool
	Modes               Modes
	HasModes            bool
}

// DecodeTargetState decodes a TC 29 subtype 1 ME field
func DecodeTargetState(me []byte) (TargetState, bool) {
	var ts TargetState
	if Bits(me, 6, 7) != 1 {
		return ts, false
	}

	if alt := Bits(me, 10, 20); alt != 0 {
		ts.SelectedAltitude = int(alt-1) * 32
		ts.SelectedAltitudeFMS = Bit(me, 9)
		ts.HasSelectedAltitude = true
	}
	if baro := Bits(me, 21, 29); baro != 0 {
		ts.BaroSetting = 800 + float64(baro-1)*0.8
		ts.HasBaroSetting = true
	}
	if Bit(me, 30) {
		ts.SelectedHeading = float64(Bits(me, 31, 39)) * 180 / 256
		ts.HasSelectedHeading = true
	}
	if Bit(me, 47) {
		ts.Modes = Modes{
			Autopilot:    Bit(me, 48),
			VNAV:         Bit(me, 49),
			AltitudeHold: Bit(me, 50),
			Approach:     Bit(me, 52),
			TCAS:         Bit(me, 53),
			LNAV:         Bit(me, 54),
		}
		ts.HasModes = true
	}
	return ts, true
}

// OperationalStatus is the content of a TC 31 squitter
type OperationalStatus struct {
	Surface bool
	Version int
	NACp    int
	SIL     int
}

// DecodeOperationalStatus decodes a TC 31 ME field
func DecodeOperationalStatus(me []byte) (OperationalStatus, bool) {
	st := Bits(me, 6, 8)
	if st > 1 {
		return OperationalStatus{}, false
	}
	return OperationalStatus{
		Surface: st == 1,
		Version: int(Bits(me, 41, 43)),
		NACp:    int(Bits(me, 45, 48)),
		SIL:     int(Bits(me, 51, 52)),
	}, true
}
