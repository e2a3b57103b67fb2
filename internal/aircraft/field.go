package aircraft

import "time"

// Field is one observable quantity of an aircraft. Value is meaningful only
// when Valid is set; Updated is the timestamp of the frame that produced it.
type Field[T any] struct {
	Value   T
	Valid   bool
	Updated time.Time
}

// set stores v unless the field already holds a value from a later frame
func (f *Field[T]) set(v T, ts time.Time) bool {
	if f.Valid && ts.Before(f.Updated) {
		return false
	}
	f.Value = v
	f.Valid = true
	f.Updated = ts
	return true
}

// Fresh reports whether the field is valid and no older than maxAge at now
func (f Field[T]) Fresh(now time.Time, maxAge time.Duration) bool {
	return f.Valid && now.Sub(f.Updated) <= maxAge
}

// FieldName identifies a record field in events
type FieldName string

// Record field names
const (
	FieldPosition         FieldName = "position"
	FieldAltitude         FieldName = "altitude"
	FieldGNSSAltitude     FieldName = "gnss_altitude"
	FieldGroundSpeed      FieldName = "ground_speed"
	FieldTrack            FieldName = "track"
	FieldHeading          FieldName = "heading"
	FieldIAS              FieldName = "ias"
	FieldTAS              FieldName = "tas"
	FieldMach             FieldName = "mach"
	FieldVerticalRate     FieldName = "vertical_rate"
	FieldSquawk           FieldName = "squawk"
	FieldCallsign         FieldName = "callsign"
	FieldCategory         FieldName = "category"
	FieldEmergency        FieldName = "emergency"
	FieldSelectedAltitude FieldName = "selected_altitude"
	FieldSelectedHeading  FieldName = "selected_heading"
	FieldBaroSetting      FieldName = "baro_setting"
	FieldModes            FieldName = "modes"
	FieldCapabilities     FieldName = "capabilities"
	FieldOnGround         FieldName = "on_ground"
	FieldInterrogator     FieldName = "interrogator"
	FieldAdvisory         FieldName = "advisory"
	FieldWindSpeed        FieldName = "wind_speed"
	FieldWindDirection    FieldName = "wind_direction"
	FieldTemperature      FieldName = "temperature"
	FieldStaticPressure   FieldName = "static_pressure"
	FieldHumidity         FieldName = "humidity"
	FieldTurbulence       FieldName = "turbulence"
	FieldRoll             FieldName = "roll"
	FieldTrackRate        FieldName = "track_rate"
	FieldRegistration     FieldName = "registration"
	FieldWaypoint         FieldName = "waypoint"
	FieldVersion          FieldName = "adsb_version"
	FieldNACp             FieldName = "nac_p"
	FieldSIL              FieldName = "sil"
	FieldACAS             FieldName = "acas"
)
