// Package basestation renders aircraft state changes as SBS-1 (BaseStation)
// CSV lines.
package basestation

import (
	"strconv"
	"strings"
	"time"
)

// Message types
const (
	TypeSelection = "SEL"
	TypeID        = "ID"
	TypeAircraft  = "AIR"
	TypeStatus    = "STA"
	TypeClick     = "CLK"
	TypeMessage   = "MSG"
)

// Transmission types of MSG lines
const (
	TransmissionIdentification = 1 // ES identification and category
	TransmissionSurface        = 2 // ES surface position
	TransmissionAirborne       = 3 // ES airborne position
	TransmissionVelocity       = 4 // ES airborne velocity
	TransmissionAltitude       = 5 // surveillance altitude
	TransmissionIdentity       = 6 // surveillance identity (squawk)
	TransmissionAirToAir       = 7 // air-to-air (ACAS) reply
	TransmissionAllCall        = 8 // all-call reply
)

// Status values of STA lines
const (
	StatusRemoved = "RM"
)

// Message is one CSV line. Empty strings leave the column blank.
type Message struct {
	Type         string
	Transmission int
	SessionID    int
	AircraftID   int
	HexIdent     string
	FlightID     int
	Generated    time.Time
	Logged       time.Time

	Callsign     string
	Altitude     string
	GroundSpeed  string
	Track        string
	Latitude     string
	Longitude    string
	VerticalRate string
	Squawk       string
	Alert        string
	Emergency    string
	SPI          string
	OnGround     string

	// Status is the value column of STA lines
	Status string
}

// Format renders m without a line terminator. MSG lines carry all 22
// columns. AIR, ID and STA lines stop after the logged time, except for the
// value column ID and STA append.
func (m *Message) Format() string {
	transmission := ""
	if m.Type == TypeMessage {
		transmission = strconv.Itoa(m.Transmission)
	}

	fields := []string{
		m.Type,
		transmission,
		strconv.Itoa(m.SessionID),
		strconv.Itoa(m.AircraftID),
		m.HexIdent,
		strconv.Itoa(m.FlightID),
		m.Generated.Format("2006/01/02"),
		m.Generated.Format("15:04:05.000"),
		m.Logged.Format("2006/01/02"),
		m.Logged.Format("15:04:05.000"),
	}

	switch m.Type {
	case TypeMessage:
		fields = append(fields,
			m.Callsign,
			m.Altitude,
			m.GroundSpeed,
			m.Track,
			m.Latitude,
			m.Longitude,
			m.VerticalRate,
			m.Squawk,
			m.Alert,
			m.Emergency,
			m.SPI,
			m.OnGround,
		)
	case TypeID:
		fields = append(fields, m.Callsign)
	case TypeStatus:
		fields = append(fields, m.Status)
	}

	return strings.Join(fields, ",")
}

// flag renders a boolean column the way SBS consumers expect
func flag(b bool) string {
	if b {
		return "-1"
	}
	return "0"
}
