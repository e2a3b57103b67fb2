package adsb

// Charset is the ICAO 6-bit character set used for callsigns and
// registrations. '#' marks codes that do not map to a printable character.
const Charset = "#ABCDEFGHIJKLMNOPQRSTUVWXYZ##### ###############0123456789######"

// Frame lengths in bytes
const (
	ShortFrameBytes = 7
	LongFrameBytes  = 14
)

// Downlink formats handled by the decoder
const (
	DFShortACAS        = 0
	DFAltitudeReply    = 4
	DFIdentityReply    = 5
	DFAllCall          = 11
	DFLongACAS         = 16
	DFExtendedSquitter = 17
	DFNonTransponder   = 18
	DFCommBAltitude    = 20
	DFCommBIdentity    = 21
)

// CPR encoding constants
const (
	CPRBits = 17
	CPRMax  = 1 << CPRBits // 2^17

	// CPRLatZones is NZ, the number of latitude zones per hemisphere
	CPRLatZones = 15
)

// Type code ranges for DF17/18 extended squitters
const (
	TCNoPosition          = 0
	TCIdentificationFirst = 1
	TCIdentificationLast  = 4
	TCSurfaceFirst        = 5
	TCSurfaceLast         = 8
	TCAirborneBaroFirst   = 9
	TCAirborneBaroLast    = 18
	TCVelocity            = 19
	TCAirborneGNSSFirst   = 20
	TCAirborneGNSSLast    = 22
	TCAircraftStatus      = 28
	TCTargetState         = 29
	TCOperationalStatus   = 31
)

// ExpectedLength returns the frame length in bytes implied by a downlink format
func ExpectedLength(df uint8) int {
	if df >= 16 {
		return LongFrameBytes
	}
	return ShortFrameBytes
}
