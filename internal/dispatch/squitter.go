package dispatch

import (
	"time"

	"modes1090/internal/adsb"
	"modes1090/internal/aircraft"
)

func (d *Dispatcher) extendedSquitter(r *aircraft.Record, f *adsb.Frame, out Outcome) Outcome {
	me := f.ME()
	ts := f.Timestamp
	out.Result = ResultApplied

	switch out.Class.ES {
	case ESNoPosition:
		if alt, ok := adsb.DecodeAC12(adsb.AC12(me)); ok {
			r.ApplyAltitude(alt, ts)
		}

	case ESIdentification:
		cs, ok := adsb.DecodeCallsign(me)
		if !ok {
			out.Result, out.Reason = ResultRejected, "callsign characters"
			return out
		}
		r.ApplyCallsign(cs, ts)
		if cat, ok := adsb.DecodeCategory(me); ok {
			r.ApplyCategory(cat, ts)
		}

	case ESSurfacePosition:
		r.ApplyOnGround(true, ts)
		if gs, ok := adsb.DecodeMovement(me); ok {
			r.ApplyGroundSpeed(gs, ts)
		}
		if trk, ok := adsb.DecodeGroundTrack(me); ok {
			r.ApplyTrack(trk, ts)
		}
		d.resolvePosition(r, me, true, ts, &out)

	case ESAirbornePosition:
		r.ApplyOnGround(false, ts)
		if out.Class.TC >= adsb.TCAirborneGNSSFirst {
			if h, ok := adsb.GNSSHeight(me); ok {
				r.ApplyGNSSAltitude(h, ts)
			}
		} else if alt, ok := adsb.DecodeAC12(adsb.AC12(me)); ok {
			r.ApplyAltitude(alt, ts)
		}
		d.resolvePosition(r, me, false, ts, &out)

	case ESVelocity:
		v, ok := adsb.DecodeVelocity(me)
		if !ok {
			out.Result, out.Reason = ResultRejected, "velocity subtype"
			return out
		}
		applyVelocity(r, v, ts)

	case ESAircraftStatus:
		st, ok := adsb.DecodeAircraftStatus(me)
		if !ok {
			out.Result, out.Reason = ResultRejected, "aircraft status subtype"
			return out
		}
		if st.Subtype == 1 {
			r.ApplyEmergency(st.Emergency, ts)
			r.ApplySquawk(st.Squawk, ts)
		} else {
			r.ApplyAdvisory(st.RA, ts)
		}

	case ESTargetState:
		st, ok := adsb.DecodeTargetState(me)
		if !ok {
			out.Result, out.Reason = ResultRejected, "target state subtype"
			return out
		}
		if st.HasSelectedAltitude {
			r.ApplySelectedAltitude(st.SelectedAltitude, ts)
		}
		if st.HasBaroSetting {
			r.ApplyBaroSetting(st.BaroSetting, ts)
		}
		if st.HasSelectedHeading {
			r.ApplySelectedHeading(st.SelectedHeading, ts)
		}
		if st.HasModes {
			r.ApplyModes(st.Modes, ts)
		}

	case ESOperationalStatus:
		st, ok := adsb.DecodeOperationalStatus(me)
		if !ok {
			out.Result, out.Reason = ResultRejected, "operational status subtype"
			return out
		}
		r.ApplyVersion(st.Version, ts)
		r.ApplyNACp(st.NACp, ts)
		r.ApplySIL(st.SIL, ts)
	}
	return out
}

// resolvePosition resolves the CPR sample of a position message
func (d *Dispatcher) resolvePosition(r *aircraft.Record, me []byte, surface bool, ts time.Time, out *Outcome) {
	lat, lon, odd := adsb.CPRFields(me)
	d.resolveSample(r, adsb.CPRSample{Lat: lat, Lon: lon, Odd: odd, Surface: surface, Timestamp: ts}, out)
}

// resolveSample buffers s and applies the resolved position, if any
func (d *Dispatcher) resolveSample(r *aircraft.Record, s adsb.CPRSample, out *Outcome) {
	r.AddCPR(s)
	res := d.resolver.Resolve(&r.CPR, s, r.Reference(s.Timestamp, d.cfg.ReferenceMaxAge))
	switch {
	case res.Invalidated:
		r.InvalidateCPR(s.Timestamp)
		out.Result, out.Reason = ResultImplausible, res.Reason
	case res.OK:
		r.ApplyPosition(res.Position, s.Timestamp)
	default:
		out.Reason = res.Reason
	}
}

func applyVelocity(r *aircraft.Record, v adsb.Velocity, ts time.Time) {
	if v.HasGroundSpeed {
		r.ApplyGroundSpeed(v.GroundSpeed, ts)
		r.ApplyTrack(v.Track, ts)
	}
	if v.HasAirspeed {
		if v.AirspeedTAS {
			r.ApplyTAS(float64(v.Airspeed), ts)
		} else {
			r.ApplyIAS(float64(v.Airspeed), ts)
		}
	}
	if v.HasHeading {
		r.ApplyHeading(v.Heading, ts)
	}
	if v.HasVerticalRate {
		r.ApplyVerticalRate(v.VerticalRate, ts)
	}
	if v.HasGNSSBaroDiff && r.Altitude.Valid {
		r.ApplyGNSSAltitude(r.Altitude.Value+v.GNSSBaroDiff, ts)
	}
}
