// Package sink forwards aircraft state to external systems: store events to
// NATS subjects and per-aircraft snapshots to Redis.
package sink

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"modes1090/internal/aircraft"
	"modes1090/internal/geo"
)

// Envelope is the JSON form of one store event
type Envelope struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Address   string `json:"address"`
	Field     string `json:"field,omitempty"`
	Value     any    `json:"value,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewEnvelope wraps an event with a fresh identifier
func NewEnvelope(e aircraft.Event) Envelope {
	return Envelope{
		ID:        uuid.New().String(),
		Kind:      e.Kind.String(),
		Address:   HexIdent(e.Address),
		Field:     string(e.Field),
		Value:     e.Value,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// HexIdent formats an ICAO address the way BaseStation and most tools do
func HexIdent(addr uint32) string {
	return fmt.Sprintf("%06X", addr)
}

// State is the JSON snapshot of one aircraft. Absent values are omitted.
type State struct {
	Address      string     `json:"address"`
	FirstSeen    time.Time  `json:"first_seen"`
	LastSeen     time.Time  `json:"last_seen"`
	Messages     uint64     `json:"messages"`
	Position     *geo.Point `json:"position,omitempty"`
	Altitude     *int       `json:"altitude,omitempty"`
	GNSSAltitude *int       `json:"gnss_altitude,omitempty"`
	GroundSpeed  *float64   `json:"ground_speed,omitempty"`
	Track        *float64   `json:"track,omitempty"`
	Heading      *float64   `json:"heading,omitempty"`
	VerticalRate *int       `json:"vertical_rate,omitempty"`
	Squawk       string     `json:"squawk,omitempty"`
	Callsign     string     `json:"callsign,omitempty"`
	Category     string     `json:"category,omitempty"`
	Emergency    string     `json:"emergency,omitempty"`
	OnGround     *bool      `json:"on_ground,omitempty"`
}

// NewState snapshots a record
func NewState(r *aircraft.Record) State {
	return State{
		Address:      HexIdent(r.Address),
		FirstSeen:    r.FirstSeen.UTC(),
		LastSeen:     r.LastSeen.UTC(),
		Messages:     r.Messages,
		Position:     ptr(r.Position),
		Altitude:     ptr(r.Altitude),
		GNSSAltitude: ptr(r.GNSSAltitude),
		GroundSpeed:  ptr(r.GroundSpeed),
		Track:        ptr(r.Track),
		Heading:      ptr(r.Heading),
		VerticalRate: ptr(r.VerticalRate),
		Squawk:       value(r.Squawk),
		Callsign:     value(r.Callsign),
		Category:     value(r.Category),
		Emergency:    value(r.Emergency),
		OnGround:     ptr(r.OnGround),
	}
}

func ptr[T any](f aircraft.Field[T]) *T {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

func value[T any](f aircraft.Field[T]) T {
	if !f.Valid {
		var zero T
		return zero
	}
	return f.Value
}
