package bds

import (
	"modes1090/internal/adsb"
	"modes1090/internal/geo"
)

// decodeFunc decodes mb under one register. A non-empty reason marks the
// hypothesis implausible.
type decodeFunc func(mb []byte, prior Prior, tol Tolerances) (Payload, string)

var decoders = [NumRegisters]decodeFunc{
	BDS05: decode05,
	BDS08: decode08,
	BDS09: decode09,
	BDS10: decode10,
	BDS17: decode17,
	BDS20: decode20,
	BDS21: decode21,
	BDS30: decode30,
	BDS40: decode40,
	BDS41: decode41,
	BDS44: decode44,
	BDS45: decode45,
	BDS50: decode50,
	BDS51: decode51,
	BDS53: decode53,
	BDS60: decode60,
}

func decode05(mb []byte, prior Prior, tol Tolerances) (Payload, string) {
	tc := uint8(adsb.Bits(mb, 1, 5))
	baro := tc >= adsb.TCAirborneBaroFirst && tc <= adsb.TCAirborneBaroLast
	gnss := tc >= adsb.TCAirborneGNSSFirst && tc <= adsb.TCAirborneGNSSLast
	if !baro && !gnss {
		return nil, "type code"
	}

	lat, lon, odd := adsb.CPRFields(mb)
	p := AirbornePosition{
		TypeCode: tc,
		GNSS:     gnss,
		CPR:      adsb.CPRSample{Lat: lat, Lon: lon, Odd: odd},
	}

	var alt int
	var ok bool
	if gnss {
		alt, ok = adsb.GNSSHeight(mb)
	} else {
		alt, ok = adsb.DecodeAC12(adsb.AC12(mb))
	}
	if !ok {
		return nil, "altitude"
	}
	p.Altitude = Some(alt)

	// Any MB opening with an airborne type code would pass otherwise
	if !prior.Altitude.OK {
		return nil, "no reference altitude"
	}
	if !altitudeOK(p.Altitude, prior.Altitude, tol) {
		return nil, "altitude inconsistent"
	}
	return p, ""
}

func decode08(mb []byte, prior Prior, _ Tolerances) (Payload, string) {
	tc := adsb.Bits(mb, 1, 5)
	if tc < adsb.TCIdentificationFirst || tc > adsb.TCIdentificationLast {
		return nil, "type code"
	}
	// 0x20 is the BDS 2,0 identifier
	if mb[0] == 0x20 {
		return nil, "identifier"
	}

	cs, ok := adsb.DecodeCallsign(mb)
	if !ok {
		return nil, "callsign characters"
	}
	if prior.Callsign.OK && cs != prior.Callsign.Value {
		return nil, "callsign mismatch"
	}

	id := Identification{Callsign: cs}
	if cat, ok := adsb.DecodeCategory(mb); ok {
		id.Category = Some(cat)
	}
	return id, ""
}

func decode09(mb []byte, prior Prior, tol Tolerances) (Payload, string) {
	if adsb.Bits(mb, 1, 5) != adsb.TCVelocity {
		return nil, "type code"
	}
	v, ok := adsb.DecodeVelocity(mb)
	if !ok {
		return nil, "subtype"
	}

	subsonic := v.Subtype == 1 || v.Subtype == 3
	if subsonic && (v.GroundSpeed > 600 || v.Airspeed > 600) {
		return nil, "speed range"
	}

	if v.HasGroundSpeed {
		if !speedOK(Some(v.GroundSpeed), prior.GroundSpeed, tol) {
			return nil, "ground speed inconsistent"
		}
		if !angleOK(Some(v.Track), prior.Track, tol) {
			return nil, "track inconsistent"
		}
	}
	if v.HasHeading && !angleOK(Some(v.Heading), prior.Heading, tol) {
		return nil, "heading inconsistent"
	}
	if v.HasAirspeed {
		ref := prior.IAS
		if v.AirspeedTAS {
			ref = prior.TAS
		}
		if !speedOK(Some(float64(v.Airspeed)), ref, tol) {
			return nil, "airspeed inconsistent"
		}
	}
	if v.HasVerticalRate && !verticalRateOK(Some(v.VerticalRate), prior.VerticalRate, tol) {
		return nil, "vertical rate inconsistent"
	}
	return Velocity{v}, ""
}

func decode10(mb []byte, _ Prior, _ Tolerances) (Payload, string) {
	if mb[0] != 0x10 {
		return nil, "identifier"
	}
	if adsb.Bits(mb, 10, 14) != 0 {
		return nil, "reserved bits"
	}

	dl := DataLink{
		Overlay:       adsb.Bit(mb, 15),
		SubnetVersion: int(adsb.Bits(mb, 17, 23)),
	}
	// Overlay command capability arrived with subnetwork version 5
	if dl.Overlay != (dl.SubnetVersion >= 5) {
		return nil, "overlay and version disagree"
	}
	return dl, ""
}

func decode17(mb []byte, _ Prior, _ Tolerances) (Payload, string) {
	if adsb.Bits(mb, 25, 56) != 0 {
		return nil, "reserved bits"
	}
	// A transponder that reports capabilities supports identification
	if !adsb.Bit(mb, 7) {
		return nil, "2,0 not supported"
	}
	return Capabilities{Bits: uint32(adsb.Bits(mb, 1, 24))}, ""
}

func decode20(mb []byte, prior Prior, _ Tolerances) (Payload, string) {
	if mb[0] != 0x20 {
		return nil, "identifier"
	}
	cs, ok := adsb.DecodeCallsign(mb)
	if !ok {
		return nil, "callsign characters"
	}
	if prior.Callsign.OK && cs != prior.Callsign.Value {
		return nil, "callsign mismatch"
	}
	return AircraftIdentification{Callsign: cs}, ""
}

func decode21(mb []byte, _ Prior, _ Tolerances) (Payload, string) {
	if wrongStatus(mb, 1, 2, 43) || wrongStatus(mb, 44, 45, 56) {
		return nil, "status"
	}

	var reg Registration
	if adsb.Bit(mb, 1) {
		s, ok := adsb.DecodeChars(mb, 2, 7)
		if !ok || s == "" {
			return nil, "registration characters"
		}
		reg.Aircraft = Some(s)
	}
	if adsb.Bit(mb, 44) {
		s, ok := adsb.DecodeChars(mb, 45, 2)
		if !ok || s == "" {
			return nil, "airline characters"
		}
		reg.Airline = Some(s)
	}
	return reg, ""
}

func decode30(mb []byte, _ Prior, _ Tolerances) (Payload, string) {
	if mb[0] != 0x30 {
		return nil, "identifier"
	}
	if adsb.Bits(mb, 29, 30) == 3 {
		return nil, "threat type"
	}
	// ARA bits 16-22 are reserved for ACAS III
	if adsb.Bits(mb, 16, 22) >= 48 {
		return nil, "reserved advisory"
	}
	return ACASAdvisory{adsb.DecodeRA(mb)}, ""
}

func decode40(mb []byte, _ Prior, _ Tolerances) (Payload, string) {
	if wrongStatus(mb, 1, 2, 13) || wrongStatus(mb, 14, 15, 26) ||
		wrongStatus(mb, 27, 28, 39) || wrongStatus(mb, 48, 49, 51) ||
		wrongStatus(mb, 54, 55, 56) {
		return nil, "status"
	}
	if adsb.Bits(mb, 40, 47) != 0 || adsb.Bits(mb, 52, 53) != 0 {
		return nil, "reserved bits"
	}

	vi := VerticalIntention{
		TargetSource: field(mb, 54, 55, 56),
	}
	if mcp := field(mb, 1, 2, 13); mcp.OK {
		vi.MCPAltitude = Some(mcp.Value * 16)
	}
	if fms := field(mb, 14, 15, 26); fms.OK {
		vi.FMSAltitude = Some(fms.Value * 16)
	}
	if baro := field(mb, 27, 28, 39); baro.OK {
		vi.BaroSetting = Some(800 + float64(baro.Value)*0.1)
	}
	if adsb.Bit(mb, 48) {
		vi.Modes = Some(adsb.Modes{
			VNAV:         adsb.Bit(mb, 49),
			AltitudeHold: adsb.Bit(mb, 50),
			Approach:     adsb.Bit(mb, 51),
		})
	}
	return vi, ""
}

func decode41(mb []byte, _ Prior, _ Tolerances) (Payload, string) {
	if !adsb.Bit(mb, 1) {
		return nil, "status"
	}
	if adsb.Bit(mb, 56) {
		return nil, "reserved bits"
	}
	name, ok := adsb.DecodeChars(mb, 2, 9)
	if !ok || name == "" {
		return nil, "waypoint characters"
	}
	return Waypoint{Name: name}, ""
}

func decode44(mb []byte, prior Prior, tol Tolerances) (Payload, string) {
	if wrongStatus(mb, 5, 6, 23) || wrongStatus(mb, 35, 36, 46) ||
		wrongStatus(mb, 47, 48, 49) || wrongStatus(mb, 50, 51, 56) {
		return nil, "status"
	}

	m := Meteorological{
		FigureOfMerit: int(adsb.Bits(mb, 1, 4)),
		WindSpeed:     scaled(field(mb, 5, 6, 14), 1),
		WindDirection: angle(field(mb, 5, 15, 23), 180.0/256),
		Temperature:   Some(float64(adsb.TwosComplement(mb, 24, 34)) * 0.25),
		Pressure:      field(mb, 35, 36, 46),
		Turbulence:    field(mb, 47, 48, 49),
		Humidity:      scaled(field(mb, 50, 51, 56), 100.0/64),
	}

	if m.FigureOfMerit > 4 {
		return nil, "figure of merit"
	}
	if m.WindSpeed.OK && m.WindSpeed.Value > 250 {
		return nil, "wind speed range"
	}
	if t := m.Temperature.Value; t < -80 || t > 60 {
		return nil, "temperature range"
	}
	if !temperatureOK(m.Temperature, prior, tol) {
		return nil, "temperature inconsistent"
	}
	return m, ""
}

func decode45(mb []byte, prior Prior, tol Tolerances) (Payload, string) {
	groups := [][3]int{
		{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}, {13, 14, 15},
		{16, 17, 26}, {27, 28, 38}, {39, 40, 51},
	}
	for _, g := range groups {
		if wrongStatus(mb, g[0], g[1], g[2]) {
			return nil, "status"
		}
	}
	if adsb.Bits(mb, 52, 56) != 0 {
		return nil, "reserved bits"
	}

	h := Hazard{
		Turbulence:  field(mb, 1, 2, 3),
		WindShear:   field(mb, 4, 5, 6),
		Microburst:  field(mb, 7, 8, 9),
		Icing:       field(mb, 10, 11, 12),
		WakeVortex:  field(mb, 13, 14, 15),
		Temperature: scaled(signedField(mb, 16, 17, 26), 0.25),
		Pressure:    field(mb, 27, 28, 38),
	}
	if rh := field(mb, 39, 40, 51); rh.OK {
		h.RadioHeight = Some(rh.Value * 16)
	}

	if t := h.Temperature; t.OK && (t.Value < -80 || t.Value > 60) {
		return nil, "temperature range"
	}
	if !temperatureOK(h.Temperature, prior, tol) {
		return nil, "temperature inconsistent"
	}
	return h, ""
}

func decode50(mb []byte, prior Prior, tol Tolerances) (Payload, string) {
	if wrongStatus(mb, 1, 3, 11) || wrongStatus(mb, 12, 13, 23) ||
		wrongStatus(mb, 24, 25, 34) || wrongStatus(mb, 35, 36, 45) ||
		wrongStatus(mb, 46, 47, 56) {
		return nil, "status"
	}

	tt := TrackTurn{
		Roll:        scaled(signedField(mb, 1, 2, 11), 45.0/256),
		Track:       angle(signedField(mb, 12, 13, 23), 90.0/512),
		GroundSpeed: scaled(field(mb, 24, 25, 34), 2),
		TrackRate:   scaled(signedField(mb, 35, 36, 45), 8.0/256),
		TAS:         scaled(field(mb, 46, 47, 56), 2),
	}

	if tt.Roll.OK && abs(tt.Roll.Value) > 60 {
		return nil, "roll range"
	}
	if tt.GroundSpeed.OK && tt.GroundSpeed.Value > 600 {
		return nil, "ground speed range"
	}
	if tt.TAS.OK && tt.TAS.Value > 600 {
		return nil, "true airspeed range"
	}
	if tt.GroundSpeed.OK && tt.TAS.OK && abs(tt.TAS.Value-tt.GroundSpeed.Value) > 200 {
		return nil, "ground speed and airspeed disagree"
	}
	if !speedOK(tt.GroundSpeed, prior.GroundSpeed, tol) ||
		!angleOK(tt.Track, prior.Track, tol) ||
		!speedOK(tt.TAS, prior.TAS, tol) {
		return nil, "inconsistent with known state"
	}
	return tt, ""
}

func decode51(mb []byte, prior Prior, tol Tolerances) (Payload, string) {
	if !adsb.Bit(mb, 1) {
		return nil, "status"
	}

	p := CoarsePosition{
		Lat:      float64(adsb.TwosComplement(mb, 2, 21)) * 180 / (1 << 20),
		Lon:      float64(adsb.TwosComplement(mb, 22, 41)) * 360 / (1 << 20),
		Altitude: adsb.TwosComplement(mb, 42, 56) * 8,
	}
	if p.Altitude < -1000 || p.Altitude > 50000 {
		return nil, "altitude range"
	}
	// Without a known position nothing distinguishes this register from noise
	if !prior.Position.OK {
		return nil, "no reference position"
	}
	if geo.Distance(geo.Point{Lat: p.Lat, Lon: p.Lon}, prior.Position.Value) > tol.Position {
		return nil, "position inconsistent"
	}
	if !altitudeOK(Some(p.Altitude), prior.Altitude, tol) {
		return nil, "altitude inconsistent"
	}
	return p, ""
}

func decode53(mb []byte, prior Prior, tol Tolerances) (Payload, string) {
	if wrongStatus(mb, 1, 2, 12) || wrongStatus(mb, 13, 14, 23) ||
		wrongStatus(mb, 24, 25, 34) || wrongStatus(mb, 35, 36, 47) ||
		wrongStatus(mb, 48, 49, 56) {
		return nil, "status"
	}

	as := AirState{
		Heading: angle(signedField(mb, 1, 2, 12), 90.0/512),
		IAS:     scaled(field(mb, 13, 14, 23), 1),
		Mach:    scaled(field(mb, 24, 25, 34), 0.008),
		TAS:     scaled(field(mb, 35, 36, 47), 0.5),
	}
	if vr := signedField(mb, 48, 49, 56); vr.OK {
		as.VerticalRate = Some(vr.Value * 64)
	}

	switch {
	case as.IAS.OK && as.IAS.Value > 500:
		return nil, "indicated airspeed range"
	case as.Mach.OK && as.Mach.Value > 1:
		return nil, "mach range"
	case as.TAS.OK && as.TAS.Value > 500:
		return nil, "true airspeed range"
	case as.VerticalRate.OK && absInt(as.VerticalRate.Value) > 8000:
		return nil, "vertical rate range"
	}

	if as.Mach.OK && as.TAS.OK && prior.Altitude.OK {
		tas := geo.MachToTAS(as.Mach.Value, float64(prior.Altitude.Value))
		if abs(tas-as.TAS.Value) > tol.Speed {
			return nil, "mach and true airspeed disagree"
		}
	}

	if !angleOK(as.Heading, prior.Heading, tol) ||
		!speedOK(as.IAS, prior.IAS, tol) ||
		!machOK(as.Mach, prior.Mach, tol) ||
		!speedOK(as.TAS, prior.TAS, tol) ||
		!verticalRateOK(as.VerticalRate, prior.VerticalRate, tol) {
		return nil, "inconsistent with known state"
	}
	return as, ""
}

func decode60(mb []byte, prior Prior, tol Tolerances) (Payload, string) {
	if wrongStatus(mb, 1, 2, 12) || wrongStatus(mb, 13, 14, 23) ||
		wrongStatus(mb, 24, 25, 34) || wrongStatus(mb, 35, 36, 45) ||
		wrongStatus(mb, 46, 47, 56) {
		return nil, "status"
	}

	hs := HeadingSpeed{
		Heading: angle(signedField(mb, 1, 2, 12), 90.0/512),
		IAS:     scaled(field(mb, 13, 14, 23), 1),
		Mach:    scaled(field(mb, 24, 25, 34), 2.048/512),
	}
	if vr := signedField(mb, 35, 36, 45); vr.OK {
		hs.BaroVerticalRate = Some(vr.Value * 32)
	}
	if vr := signedField(mb, 46, 47, 56); vr.OK {
		hs.InertialVerticalRate = Some(vr.Value * 32)
	}

	switch {
	case hs.IAS.OK && hs.IAS.Value > 500:
		return nil, "indicated airspeed range"
	case hs.Mach.OK && hs.Mach.Value > 1:
		return nil, "mach range"
	case hs.BaroVerticalRate.OK && absInt(hs.BaroVerticalRate.Value) > 6000:
		return nil, "vertical rate range"
	case hs.InertialVerticalRate.OK && absInt(hs.InertialVerticalRate.Value) > 6000:
		return nil, "vertical rate range"
	}

	if hs.IAS.OK && hs.Mach.OK && prior.Altitude.OK {
		cas := geo.MachToCAS(hs.Mach.Value, float64(prior.Altitude.Value))
		if abs(cas-hs.IAS.Value) > tol.MachIAS {
			return nil, "mach and airspeed disagree"
		}
	}

	if !angleOK(hs.Heading, prior.Heading, tol) ||
		!speedOK(hs.IAS, prior.IAS, tol) ||
		!machOK(hs.Mach, prior.Mach, tol) ||
		!verticalRateOK(hs.BaroVerticalRate, prior.VerticalRate, tol) ||
		!verticalRateOK(hs.InertialVerticalRate, prior.VerticalRate, tol) {
		return nil, "inconsistent with known state"
	}
	return hs, ""
}
