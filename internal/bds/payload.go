package bds

import (
	"strings"

	"modes1090/internal/adsb"
)

// Payload is the decoded content of one register hypothesis
type Payload interface {
	Register() Register
}

// AirbornePosition is BDS 0,5
type AirbornePosition struct {
	TypeCode uint8
	Altitude Known[int]
	GNSS     bool // altitude is GNSS height
	CPR      adsb.CPRSample
}

// Identification is BDS 0,8
type Identification struct {
	Callsign string
	Category Known[string]
}

// Velocity is BDS 0,9
type Velocity struct {
	adsb.Velocity
}

// DataLink is BDS 1,0
type DataLink struct {
	Overlay       bool
	SubnetVersion int
}

// Capabilities is BDS 1,7: bit i (0-based from the MSB) of Bits flags
// support for CapabilityNames[i]
type Capabilities struct {
	Bits uint32
}

// CapabilityNames lists the registers reported by BDS 1,7 in bit order
var CapabilityNames = [24]string{
	"0,5", "0,6", "0,7", "0,8", "0,9", "0,A", "2,0", "2,1",
	"4,0", "4,1", "4,2", "4,3", "4,4", "4,5", "4,8", "5,0",
	"5,1", "5,2", "5,3", "5,4", "5,5", "5,6", "5,F", "6,0",
}

// Supported returns the names of the registers flagged in the bitmap
func (c Capabilities) Supported() []string {
	var out []string
	for i, name := range CapabilityNames {
		if c.Bits&(1<<(23-i)) != 0 {
			out = append(out, name)
		}
	}
	return out
}

// String joins the supported register names
func (c Capabilities) String() string {
	return strings.Join(c.Supported(), " ")
}

// AircraftIdentification is BDS 2,0
type AircraftIdentification struct {
	Callsign string
}

// Registration is BDS 2,1
type Registration struct {
	Aircraft Known[string]
	Airline  Known[string]
}

// ACASAdvisory is BDS 3,0
type ACASAdvisory struct {
	adsb.ResolutionAdvisory
}

// VerticalIntention is BDS 4,0
type VerticalIntention struct {
	MCPAltitude  Known[int]     // feet
	FMSAltitude  Known[int]     // feet
	BaroSetting  Known[float64] // hPa
	Modes        Known[adsb.Modes]
	TargetSource Known[int]
}

// Waypoint is BDS 4,1
type Waypoint struct {
	Name string
}

// Meteorological is BDS 4,4
type Meteorological struct {
	FigureOfMerit int
	WindSpeed     Known[float64] // knots
	WindDirection Known[float64] // degrees true
	Temperature   Known[float64] // Celsius
	Pressure      Known[int]     // hPa
	Turbulence    Known[int]
	Humidity      Known[float64] // percent
}

// Hazard is BDS 4,5
type Hazard struct {
	Turbulence  Known[int] // 0 nil to 3 severe
	WindShear   Known[int]
	Microburst  Known[int]
	Icing       Known[int]
	WakeVortex  Known[int]
	Temperature Known[float64] // Celsius
	Pressure    Known[int]     // hPa
	RadioHeight Known[int]     // feet
}

// TrackTurn is BDS 5,0
type TrackTurn struct {
	Roll        Known[float64] // degrees, positive right wing down
	Track       Known[float64] // degrees true
	GroundSpeed Known[float64] // knots
	TrackRate   Known[float64] // degrees per second
	TAS         Known[float64] // knots
}

// CoarsePosition is BDS 5,1
type CoarsePosition struct {
	Lat      float64
	Lon      float64
	Altitude int // feet
}

// AirState is BDS 5,3
type AirState struct {
	Heading      Known[float64] // degrees magnetic
	IAS          Known[float64] // knots
	Mach         Known[float64]
	TAS          Known[float64] // knots
	VerticalRate Known[int]     // ft/min
}

// HeadingSpeed is BDS 6,0
type HeadingSpeed struct {
	Heading              Known[float64] // degrees magnetic
	IAS                  Known[float64] // knots
	Mach                 Known[float64]
	BaroVerticalRate     Known[int] // ft/min
	InertialVerticalRate Known[int] // ft/min
}

func (AirbornePosition) Register() Register       { return BDS05 }
func (Identification) Register() Register         { return BDS08 }
func (Velocity) Register() Register               { return BDS09 }
func (DataLink) Register() Register               { return BDS10 }
func (Capabilities) Register() Register           { return BDS17 }
func (AircraftIdentification) Register() Register { return BDS20 }
func (Registration) Register() Register           { return BDS21 }
func (ACASAdvisory) Register() Register           { return BDS30 }
func (VerticalIntention) Register() Register      { return BDS40 }
func (Waypoint) Register() Register               { return BDS41 }
func (Meteorological) Register() Register         { return BDS44 }
func (Hazard) Register() Register                 { return BDS45 }
func (TrackTurn) Register() Register              { return BDS50 }
func (CoarsePosition) Register() Register         { return BDS51 }
func (AirState) Register() Register               { return BDS53 }
func (HeadingSpeed) Register() Register           { return BDS60 }
