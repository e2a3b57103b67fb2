package aircraft

import (
	"fmt"
	"time"
)

// EventKind classifies store events
type EventKind int

const (
	// EventFieldUpdated is emitted for every accepted field update
	EventFieldUpdated EventKind = iota
	// EventPositionAcquired is emitted once, on the first position of a record
	EventPositionAcquired
	// EventPositionLost is emitted when buffered CPR samples are discarded,
	// either by a surface/airborne transition or by an inconsistent decode
	EventPositionLost
	// EventAircraftAdded is emitted when a record is created
	EventAircraftAdded
	// EventAircraftRemoved is emitted when Evict drops a record
	EventAircraftRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventFieldUpdated:
		return "field_updated"
	case EventPositionAcquired:
		return "position_acquired"
	case EventPositionLost:
		return "position_lost"
	case EventAircraftAdded:
		return "aircraft_added"
	case EventAircraftRemoved:
		return "aircraft_removed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event reports a change to the store. Field and Value are set for field
// updates and position events.
type Event struct {
	Kind      EventKind
	Address   uint32
	Field     FieldName
	Value     any
	Valid     bool
	Timestamp time.Time
}

// Handler receives store events synchronously, in the order they happen
type Handler func(Event)
