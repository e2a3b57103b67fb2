// Package dispatch routes Mode-S frames to the field decoders, the CPR
// resolver and the BDS disambiguator, and applies the results to the
// aircraft store.
package dispatch

import (
	"fmt"

	"modes1090/internal/adsb"
)

// Kind is the closed set of frame shapes the dispatcher understands
type Kind int

const (
	KindUnsupported Kind = iota
	KindShortACAS
	KindAltitudeReply
	KindIdentityReply
	KindAllCall
	KindLongACAS
	KindExtendedSquitter
	KindCommBAltitude
	KindCommBIdentity
)

func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindShortACAS:
		return "short_acas"
	case KindAltitudeReply:
		return "altitude_reply"
	case KindIdentityReply:
		return "identity_reply"
	case KindAllCall:
		return "all_call"
	case KindLongACAS:
		return "long_acas"
	case KindExtendedSquitter:
		return "extended_squitter"
	case KindCommBAltitude:
		return "commb_altitude"
	case KindCommBIdentity:
		return "commb_identity"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ESKind is the closed set of extended squitter messages, selected by type code
type ESKind int

const (
	ESUnsupported ESKind = iota
	ESNoPosition
	ESIdentification
	ESSurfacePosition
	ESAirbornePosition
	ESVelocity
	ESAircraftStatus
	ESTargetState
	ESOperationalStatus
)

func (k ESKind) String() string {
	switch k {
	case ESUnsupported:
		return "unsupported"
	case ESNoPosition:
		return "no_position"
	case ESIdentification:
		return "identification"
	case ESSurfacePosition:
		return "surface_position"
	case ESAirbornePosition:
		return "airborne_position"
	case ESVelocity:
		return "velocity"
	case ESAircraftStatus:
		return "aircraft_status"
	case ESTargetState:
		return "target_state"
	case ESOperationalStatus:
		return "operational_status"
	}
	return fmt.Sprintf("ESKind(%d)", int(k))
}

// Class is the result of classifying a frame
type Class struct {
	Kind Kind
	ES   ESKind // extended squitters only
	DF   uint8
	CA   uint8 // CA, CF or FS depending on DF
	TC   uint8 // extended squitters only
}

// Classify extracts DF, CA/CF and TC and selects the frame kind. Frames whose
// length does not match their DF are unsupported.
func Classify(f *adsb.Frame) Class {
	c := Class{DF: f.DF(), CA: f.CA()}
	if len(f.Data) == 0 || len(f.Data) != adsb.ExpectedLength(c.DF) {
		return c
	}

	switch c.DF {
	case adsb.DFShortACAS:
		c.Kind = KindShortACAS
	case adsb.DFAltitudeReply:
		c.Kind = KindAltitudeReply
	case adsb.DFIdentityReply:
		c.Kind = KindIdentityReply
	case adsb.DFAllCall:
		c.Kind = KindAllCall
	case adsb.DFLongACAS:
		c.Kind = KindLongACAS
	case adsb.DFExtendedSquitter:
		c.Kind = KindExtendedSquitter
	case adsb.DFNonTransponder:
		// CF 3 is coarse TIS-B and CF 4 TIS-B/ADS-R management, neither is ES shaped
		if c.CA != 3 && c.CA != 4 {
			c.Kind = KindExtendedSquitter
		}
	case adsb.DFCommBAltitude:
		c.Kind = KindCommBAltitude
	case adsb.DFCommBIdentity:
		c.Kind = KindCommBIdentity
	}

	if c.Kind == KindExtendedSquitter {
		c.TC = f.TC()
		c.ES = ClassifyES(c.TC)
	}
	return c
}

// ClassifyES maps an extended squitter type code to its message kind
func ClassifyES(tc uint8) ESKind {
	switch {
	case tc == adsb.TCNoPosition:
		return ESNoPosition
	case tc >= adsb.TCIdentificationFirst && tc <= adsb.TCIdentificationLast:
		return ESIdentification
	case tc >= adsb.TCSurfaceFirst && tc <= adsb.TCSurfaceLast:
		return ESSurfacePosition
	case tc >= adsb.TCAirborneBaroFirst && tc <= adsb.TCAirborneBaroLast,
		tc >= adsb.TCAirborneGNSSFirst && tc <= adsb.TCAirborneGNSSLast:
		return ESAirbornePosition
	case tc == adsb.TCVelocity:
		return ESVelocity
	case tc == adsb.TCAircraftStatus:
		return ESAircraftStatus
	case tc == adsb.TCTargetState:
		return ESTargetState
	case tc == adsb.TCOperationalStatus:
		return ESOperationalStatus
	}
	return ESUnsupported
}
