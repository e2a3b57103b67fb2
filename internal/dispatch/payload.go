package dispatch

import (
	"fmt"
	"time"

	"modes1090/internal/aircraft"
	"modes1090/internal/bds"
)

// applyPayload writes a resolved BDS register to the record
func (d *Dispatcher) applyPayload(r *aircraft.Record, p bds.Payload, ts time.Time, out *Outcome) {
	switch v := p.(type) {
	case bds.AirbornePosition:
		if v.Altitude.OK {
			if v.GNSS {
				r.ApplyGNSSAltitude(v.Altitude.Value, ts)
			} else {
				r.ApplyAltitude(v.Altitude.Value, ts)
			}
		}
		s := v.CPR
		s.Timestamp = ts
		d.resolveSample(r, s, out)

	case bds.Identification:
		r.ApplyCallsign(v.Callsign, ts)
		if v.Category.OK {
			r.ApplyCategory(v.Category.Value, ts)
		}

	case bds.Velocity:
		applyVelocity(r, v.Velocity, ts)

	case bds.DataLink:
		// Nothing in the record depends on the data link capability

	case bds.Capabilities:
		r.MergeCapabilities(v.Bits, ts)

	case bds.AircraftIdentification:
		r.ApplyCallsign(v.Callsign, ts)

	case bds.Registration:
		if v.Aircraft.OK {
			r.ApplyRegistration(v.Aircraft.Value, ts)
		}

	case bds.ACASAdvisory:
		r.ApplyAdvisory(v.ResolutionAdvisory, ts)

	case bds.VerticalIntention:
		switch {
		case v.MCPAltitude.OK:
			r.ApplySelectedAltitude(v.MCPAltitude.Value, ts)
		case v.FMSAltitude.OK:
			r.ApplySelectedAltitude(v.FMSAltitude.Value, ts)
		}
		if v.BaroSetting.OK {
			r.ApplyBaroSetting(v.BaroSetting.Value, ts)
		}
		if v.Modes.OK {
			r.ApplyModes(v.Modes.Value, ts)
		}

	case bds.Waypoint:
		r.ApplyWaypoint(v.Name, ts)

	case bds.Meteorological:
		if v.WindSpeed.OK && v.WindDirection.OK {
			r.ApplyWind(v.WindSpeed.Value, v.WindDirection.Value, ts)
		}
		if v.Temperature.OK {
			r.ApplyTemperature(v.Temperature.Value, ts)
		}
		if v.Pressure.OK {
			r.ApplyStaticPressure(v.Pressure.Value, ts)
		}
		if v.Turbulence.OK {
			r.ApplyTurbulence(v.Turbulence.Value, ts)
		}
		if v.Humidity.OK {
			r.ApplyHumidity(v.Humidity.Value, ts)
		}

	case bds.Hazard:
		if v.Turbulence.OK {
			r.ApplyTurbulence(v.Turbulence.Value, ts)
		}
		if v.Temperature.OK {
			r.ApplyTemperature(v.Temperature.Value, ts)
		}
		if v.Pressure.OK {
			r.ApplyStaticPressure(v.Pressure.Value, ts)
		}

	case bds.TrackTurn:
		if v.Roll.OK {
			r.ApplyRoll(v.Roll.Value, ts)
		}
		if v.Track.OK {
			r.ApplyTrack(v.Track.Value, ts)
		}
		if v.GroundSpeed.OK {
			r.ApplyGroundSpeed(v.GroundSpeed.Value, ts)
		}
		if v.TrackRate.OK {
			r.ApplyTrackRate(v.TrackRate.Value, ts)
		}
		if v.TAS.OK {
			r.ApplyTAS(v.TAS.Value, ts)
		}

	case bds.CoarsePosition:
		// Too coarse for the position field; it only served as a consistency check

	case bds.AirState:
		if v.Heading.OK {
			r.ApplyHeading(v.Heading.Value, ts)
		}
		if v.IAS.OK {
			r.ApplyIAS(v.IAS.Value, ts)
		}
		if v.Mach.OK {
			r.ApplyMach(v.Mach.Value, ts)
		}
		if v.TAS.OK {
			r.ApplyTAS(v.TAS.Value, ts)
		}
		if v.VerticalRate.OK {
			r.ApplyVerticalRate(v.VerticalRate.Value, ts)
		}

	case bds.HeadingSpeed:
		if v.Heading.OK {
			r.ApplyHeading(v.Heading.Value, ts)
		}
		if v.IAS.OK {
			r.ApplyIAS(v.IAS.Value, ts)
		}
		if v.Mach.OK {
			r.ApplyMach(v.Mach.Value, ts)
		}
		switch {
		case v.BaroVerticalRate.OK:
			r.ApplyVerticalRate(v.BaroVerticalRate.Value, ts)
		case v.InertialVerticalRate.OK:
			r.ApplyVerticalRate(v.InertialVerticalRate.Value, ts)
		}

	default:
		panic(fmt.Sprintf("dispatch: unhandled BDS payload %T", p))
	}
}
