package aircraft

import (
	"time"

	"modes1090/internal/adsb"
	"modes1090/internal/geo"
)

// Record is the accumulated state of one aircraft. Fields are written only
// through the Apply methods, which keep each field's timestamp monotonic and
// emit events.
type Record struct {
	Address   uint32
	FirstSeen time.Time
	LastSeen  time.Time
	Messages  uint64

	Position     Field[geo.Point]
	Altitude     Field[int] // barometric, feet
	GNSSAltitude Field[int] // feet
	GroundSpeed  Field[float64]
	Track        Field[float64]
	Heading      Field[float64]
	IAS          Field[float64]
	TAS          Field[float64]
	Mach         Field[float64]
	VerticalRate Field[int]

	Squawk    Field[string]
	Callsign  Field[string]
	Category  Field[string]
	Emergency Field[string]

	SelectedAltitude Field[int]
	SelectedHeading  Field[float64]
	BaroSetting      Field[float64]
	Modes            Field[adsb.Modes]

	Capabilities Field[uint32] // BDS 1,7 bitmap
	OnGround     Field[bool]
	Interrogator Field[uint8]
	Advisory     Field[adsb.ResolutionAdvisory]
	ACAS         Field[uint8] // reply information of DF 0/16

	WindSpeed      Field[float64] // knots
	WindDirection  Field[float64]
	Temperature    Field[float64] // Celsius
	StaticPressure Field[int]     // hPa
	Humidity       Field[float64]
	Turbulence     Field[int]
	Roll           Field[float64]
	TrackRate      Field[float64]

	Registration Field[string]
	Waypoint     Field[string]
	Version      Field[int]
	NACp         Field[int]
	SIL          Field[int]

	// CPR buffers the last even and odd position samples
	CPR adsb.CPRPair

	hasFix bool
	store  *Store
}

// HasFix reports whether the record ever had a position
func (r *Record) HasFix() bool {
	return r.hasFix
}

// Seen records the receipt of a frame for this aircraft
func (r *Record) Seen(ts time.Time) {
	r.Messages++
	if ts.After(r.LastSeen) {
		r.LastSeen = ts
	}
}

// Reference returns the last position if it is no older than maxAge at now
func (r *Record) Reference(now time.Time, maxAge time.Duration) *geo.Point {
	if !r.Position.Fresh(now, maxAge) {
		return nil
	}
	p := r.Position.Value
	return &p
}

func (r *Record) emit(e Event) {
	e.Address = r.Address
	if r.store != nil {
		r.store.emit(e)
	}
}

func apply[T any](r *Record, name FieldName, f *Field[T], v T, ts time.Time) bool {
	if !f.set(v, ts) {
		return false
	}
	r.emit(Event{Kind: EventFieldUpdated, Field: name, Value: v, Valid: true, Timestamp: ts})
	return true
}

// ApplyPosition stores a resolved position. The first accepted position
// also emits EventPositionAcquired.
func (r *Record) ApplyPosition(p geo.Point, ts time.Time) bool {
	if !apply(r, FieldPosition, &r.Position, p, ts) {
		return false
	}
	if !r.hasFix {
		r.hasFix = true
		r.emit(Event{Kind: EventPositionAcquired, Field: FieldPosition, Value: p, Valid: true, Timestamp: ts})
	}
	return true
}

// ApplyOnGround stores the surface state. A change of state discards the
// buffered CPR samples and emits EventPositionLost if there were any.
func (r *Record) ApplyOnGround(v bool, ts time.Time) bool {
	changed := r.OnGround.Valid && r.OnGround.Value != v
	if !apply(r, FieldOnGround, &r.OnGround, v, ts) {
		return false
	}
	if changed && r.CPR.Reset() {
		r.emit(Event{Kind: EventPositionLost, Field: FieldPosition, Timestamp: ts})
	}
	return true
}

// AddCPR buffers a CPR sample. A sample from the other domain discards the
// pair and emits EventPositionLost.
func (r *Record) AddCPR(s adsb.CPRSample) {
	if r.CPR.Add(s) {
		r.emit(Event{Kind: EventPositionLost, Field: FieldPosition, Timestamp: s.Timestamp})
	}
}

// InvalidateCPR discards the buffered CPR samples after an inconsistent
// decode and emits EventPositionLost. The last position is kept.
func (r *Record) InvalidateCPR(ts time.Time) {
	r.CPR.Reset()
	r.emit(Event{Kind: EventPositionLost, Field: FieldPosition, Timestamp: ts})
}

// MergeCapabilities ORs a BDS 1,7 bitmap into the known capabilities
func (r *Record) MergeCapabilities(bits uint32, ts time.Time) bool {
	merged := bits
	if r.Capabilities.Valid {
		merged |= r.Capabilities.Value
	}
	return apply(r, FieldCapabilities, &r.Capabilities, merged, ts)
}

// ApplyAltitude stores the barometric altitude in feet
func (r *Record) ApplyAltitude(v int, ts time.Time) bool {
	return apply(r, FieldAltitude, &r.Altitude, v, ts)
}

// ApplyGNSSAltitude stores the geometric altitude in feet
func (r *Record) ApplyGNSSAltitude(v int, ts time.Time) bool {
	return apply(r, FieldGNSSAltitude, &r.GNSSAltitude, v, ts)
}

// ApplyGroundSpeed stores the ground speed in knots
func (r *Record) ApplyGroundSpeed(v float64, ts time.Time) bool {
	return apply(r, FieldGroundSpeed, &r.GroundSpeed, v, ts)
}

// ApplyTrack stores the true track in degrees
func (r *Record) ApplyTrack(v float64, ts time.Time) bool {
	return apply(r, FieldTrack, &r.Track, v, ts)
}

// ApplyHeading stores the heading in degrees
func (r *Record) ApplyHeading(v float64, ts time.Time) bool {
	return apply(r, FieldHeading, &r.Heading, v, ts)
}

// ApplyIAS stores the indicated airspeed in knots
func (r *Record) ApplyIAS(v float64, ts time.Time) bool {
	return apply(r, FieldIAS, &r.IAS, v, ts)
}

// ApplyTAS stores the true airspeed in knots
func (r *Record) ApplyTAS(v float64, ts time.Time) bool {
	return apply(r, FieldTAS, &r.TAS, v, ts)
}

// ApplyMach stores the Mach number
func (r *Record) ApplyMach(v float64, ts time.Time) bool {
	return apply(r, FieldMach, &r.Mach, v, ts)
}

// ApplyVerticalRate stores the vertical rate in ft/min
func (r *Record) ApplyVerticalRate(v int, ts time.Time) bool {
	return apply(r, FieldVerticalRate, &r.VerticalRate, v, ts)
}

// ApplySquawk stores the Mode A code
func (r *Record) ApplySquawk(v string, ts time.Time) bool {
	return apply(r, FieldSquawk, &r.Squawk, v, ts)
}

// ApplyCallsign stores the flight identification
func (r *Record) ApplyCallsign(v string, ts time.Time) bool {
	return apply(r, FieldCallsign, &r.Callsign, v, ts)
}

// ApplyCategory stores the emitter category
func (r *Record) ApplyCategory(v string, ts time.Time) bool {
	return apply(r, FieldCategory, &r.Category, v, ts)
}

// ApplyEmergency stores the emergency state
func (r *Record) ApplyEmergency(v string, ts time.Time) bool {
	return apply(r, FieldEmergency, &r.Emergency, v, ts)
}

// ApplySelectedAltitude stores the selected altitude in feet
func (r *Record) ApplySelectedAltitude(v int, ts time.Time) bool {
	return apply(r, FieldSelectedAltitude, &r.SelectedAltitude, v, ts)
}

// ApplySelectedHeading stores the selected heading in degrees
func (r *Record) ApplySelectedHeading(v float64, ts time.Time) bool {
	return apply(r, FieldSelectedHeading, &r.SelectedHeading, v, ts)
}

// ApplyBaroSetting stores the barometric pressure setting in hPa
func (r *Record) ApplyBaroSetting(v float64, ts time.Time) bool {
	return apply(r, FieldBaroSetting, &r.BaroSetting, v, ts)
}

// ApplyModes stores the autopilot modes
func (r *Record) ApplyModes(v adsb.Modes, ts time.Time) bool {
	return apply(r, FieldModes, &r.Modes, v, ts)
}

// ApplyInterrogator stores the interrogator code of an all-call reply
func (r *Record) ApplyInterrogator(v uint8, ts time.Time) bool {
	return apply(r, FieldInterrogator, &r.Interrogator, v, ts)
}

// ApplyAdvisory stores the ACAS resolution advisory
func (r *Record) ApplyAdvisory(v adsb.ResolutionAdvisory, ts time.Time) bool {
	return apply(r, FieldAdvisory, &r.Advisory, v, ts)
}

// ApplyACAS stores the ACAS reply information
func (r *Record) ApplyACAS(v uint8, ts time.Time) bool {
	return apply(r, FieldACAS, &r.ACAS, v, ts)
}

// ApplyWind stores wind speed and direction
func (r *Record) ApplyWind(speed, direction float64, ts time.Time) bool {
	if !apply(r, FieldWindSpeed, &r.WindSpeed, speed, ts) {
		return false
	}
	return apply(r, FieldWindDirection, &r.WindDirection, direction, ts)
}

// ApplyTemperature stores the static air temperature in Celsius
func (r *Record) ApplyTemperature(v float64, ts time.Time) bool {
	return apply(r, FieldTemperature, &r.Temperature, v, ts)
}

// ApplyStaticPressure stores the static pressure in hPa
func (r *Record) ApplyStaticPressure(v int, ts time.Time) bool {
	return apply(r, FieldStaticPressure, &r.StaticPressure, v, ts)
}

// ApplyHumidity stores the relative humidity in percent
func (r *Record) ApplyHumidity(v float64, ts time.Time) bool {
	return apply(r, FieldHumidity, &r.Humidity, v, ts)
}

// ApplyTurbulence stores the turbulence level
func (r *Record) ApplyTurbulence(v int, ts time.Time) bool {
	return apply(r, FieldTurbulence, &r.Turbulence, v, ts)
}

// ApplyRoll stores the roll angle in degrees
func (r *Record) ApplyRoll(v float64, ts time.Time) bool {
	return apply(r, FieldRoll, &r.Roll, v, ts)
}

// ApplyTrackRate stores the track angle rate in degrees per second
func (r *Record) ApplyTrackRate(v float64, ts time.Time) bool {
	return apply(r, FieldTrackRate, &r.TrackRate, v, ts)
}

// ApplyRegistration stores the aircraft registration
func (r *Record) ApplyRegistration(v string, ts time.Time) bool {
	return apply(r, FieldRegistration, &r.Registration, v, ts)
}

// ApplyWaypoint stores the next waypoint
func (r *Record) ApplyWaypoint(v string, ts time.Time) bool {
	return apply(r, FieldWaypoint, &r.Waypoint, v, ts)
}

// ApplyVersion stores the ADS-B version number
func (r *Record) ApplyVersion(v int, ts time.Time) bool {
	return apply(r, FieldVersion, &r.Version, v, ts)
}

// ApplyNACp stores the position accuracy category
func (r *Record) ApplyNACp(v int, ts time.Time) bool {
	return apply(r, FieldNACp, &r.NACp, v, ts)
}

// ApplySIL stores the source integrity level
func (r *Record) ApplySIL(v int, ts time.Time) bool {
	return apply(r, FieldSIL, &r.SIL, v, ts)
}
