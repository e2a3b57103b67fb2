package basestation

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"modes1090/internal/aircraft"
)

type pending struct {
	address      uint32
	transmission int
	timestamp    time.Time
}

// Writer turns store events into BaseStation lines. Events are collected
// while a frame is dispatched and written by Flush, so a frame that updates
// several fields of one message type produces one line.
//
// Writer is driven from the dispatch goroutine and does no locking.
type Writer struct {
	out    *bufio.Writer
	store  *aircraft.Store
	logger *logrus.Logger
	now    func() time.Time

	sessionID int
	nextID    int
	ids       map[uint32]int
	squawks   map[uint32]string

	lines   []Message
	pending []pending
	written uint64
}

// NewWriter creates a writer and subscribes it to the store
func NewWriter(out io.Writer, store *aircraft.Store, logger *logrus.Logger) *Writer {
	w := &Writer{
		out:       bufio.NewWriter(out),
		store:     store,
		logger:    logger,
		now:       time.Now,
		sessionID: 1,
		nextID:    1,
		ids:       make(map[uint32]int),
		squawks:   make(map[uint32]string),
	}
	store.Subscribe(w.handle)
	return w
}

// Written returns the number of lines written
func (w *Writer) Written() uint64 {
	return w.written
}

func (w *Writer) handle(e aircraft.Event) {
	switch e.Kind {
	case aircraft.EventAircraftAdded:
		id := w.nextID
		w.nextID++
		w.ids[e.Address] = id
		w.lines = append(w.lines, w.header(TypeAircraft, e.Address, e.Timestamp))

	case aircraft.EventAircraftRemoved:
		m := w.header(TypeStatus, e.Address, e.Timestamp)
		m.Status = StatusRemoved
		w.lines = append(w.lines, m)
		delete(w.ids, e.Address)
		delete(w.squawks, e.Address)

	case aircraft.EventFieldUpdated:
		if t, ok := transmissionFor(e.Field); ok {
			w.queue(e.Address, t, e.Timestamp)
		}
	}
}

func transmissionFor(field aircraft.FieldName) (int, bool) {
	switch field {
	case aircraft.FieldCallsign, aircraft.FieldCategory:
		return TransmissionIdentification, true
	case aircraft.FieldPosition:
		return TransmissionAirborne, true
	case aircraft.FieldGroundSpeed, aircraft.FieldTrack, aircraft.FieldVerticalRate:
		return TransmissionVelocity, true
	case aircraft.FieldAltitude:
		return TransmissionAltitude, true
	case aircraft.FieldSquawk, aircraft.FieldEmergency:
		return TransmissionIdentity, true
	case aircraft.FieldACAS:
		return TransmissionAirToAir, true
	case aircraft.FieldInterrogator:
		return TransmissionAllCall, true
	}
	return 0, false
}

func (w *Writer) queue(addr uint32, transmission int, ts time.Time) {
	for i := range w.pending {
		p := &w.pending[i]
		if p.address == addr && p.transmission == transmission {
			if ts.After(p.timestamp) {
				p.timestamp = ts
			}
			return
		}
	}
	w.pending = append(w.pending, pending{address: addr, transmission: transmission, timestamp: ts})
}

func (w *Writer) has(addr uint32, transmission int) bool {
	for _, p := range w.pending {
		if p.address == addr && p.transmission == transmission {
			return true
		}
	}
	return false
}

func (w *Writer) header(typ string, addr uint32, ts time.Time) Message {
	id := w.ids[addr]
	return Message{
		Type:       typ,
		SessionID:  w.sessionID,
		AircraftID: id,
		HexIdent:   fmt.Sprintf("%06X", addr),
		FlightID:   id,
		Generated:  ts,
		Logged:     w.now(),
	}
}

// Flush renders everything collected since the last flush
func (w *Writer) Flush() error {
	lines := w.lines
	for _, p := range w.pending {
		// Position lines already carry the altitude
		if p.transmission == TransmissionAltitude && w.has(p.address, TransmissionAirborne) {
			continue
		}
		r, ok := w.store.Get(p.address)
		if !ok {
			w.logger.WithField("address", fmt.Sprintf("%06X", p.address)).Debug("Update for removed aircraft dropped")
			continue
		}
		lines = append(lines, w.render(r, p))
	}
	w.lines = w.lines[:0]
	w.pending = w.pending[:0]

	for i := range lines {
		if _, err := w.out.WriteString(lines[i].Format() + "\n"); err != nil {
			return fmt.Errorf("failed to write basestation line: %w", err)
		}
		w.written++
	}
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("failed to write basestation line: %w", err)
	}
	return nil
}

func (w *Writer) render(r *aircraft.Record, p pending) Message {
	m := w.header(TypeMessage, r.Address, p.timestamp)
	m.Transmission = p.transmission

	onGround := r.OnGround.Valid && r.OnGround.Value
	alert := false
	if p.transmission == TransmissionIdentity && r.Squawk.Valid {
		prev, seen := w.squawks[r.Address]
		alert = seen && prev != r.Squawk.Value
		w.squawks[r.Address] = r.Squawk.Value
	}
	emergency := r.Emergency.Valid && r.Emergency.Value != "none"

	switch p.transmission {
	case TransmissionIdentification:
		m.Callsign = stringField(r.Callsign)

	case TransmissionAirborne:
		if onGround {
			m.Transmission = TransmissionSurface
			m.GroundSpeed = floatField(r.GroundSpeed, 0)
			m.Track = floatField(r.Track, 0)
		}
		m.Altitude = intField(r.Altitude)
		m.Latitude, m.Longitude = positionField(r)
		m.Alert = flag(false)
		m.Emergency = flag(emergency)
		m.SPI = flag(false)
		m.OnGround = flag(onGround)

	case TransmissionVelocity:
		m.GroundSpeed = floatField(r.GroundSpeed, 0)
		m.Track = floatField(r.Track, 0)
		m.VerticalRate = intField(r.VerticalRate)

	case TransmissionAltitude:
		m.Altitude = intField(r.Altitude)
		m.Alert = flag(false)
		m.SPI = flag(false)
		m.OnGround = flag(onGround)

	case TransmissionIdentity:
		m.Altitude = intField(r.Altitude)
		m.Squawk = stringField(r.Squawk)
		m.Alert = flag(alert)
		m.Emergency = flag(emergency)
		m.SPI = flag(false)
		m.OnGround = flag(onGround)

	case TransmissionAirToAir:
		m.Altitude = intField(r.Altitude)
		m.OnGround = flag(onGround)

	case TransmissionAllCall:
		m.OnGround = flag(onGround)
	}

	return m
}

func stringField(f aircraft.Field[string]) string {
	if !f.Valid {
		return ""
	}
	return f.Value
}

func intField(f aircraft.Field[int]) string {
	if !f.Valid {
		return ""
	}
	return strconv.Itoa(f.Value)
}

func floatField(f aircraft.Field[float64], prec int) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', prec, 64)
}

func positionField(r *aircraft.Record) (string, string) {
	if !r.Position.Valid {
		return "", ""
	}
	p := r.Position.Value
	return strconv.FormatFloat(p.Lat, 'f', 5, 64), strconv.FormatFloat(p.Lon, 'f', 5, 64)
}
