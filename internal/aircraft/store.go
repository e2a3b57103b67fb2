// Package aircraft accumulates decoded state per ICAO address.
//
// The store is owned by a single goroutine and does no locking.
package aircraft

import (
	"sort"
	"time"
)

// Store holds one record per 24-bit ICAO address
type Store struct {
	records  map[uint32]*Record
	handlers []Handler
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{records: make(map[uint32]*Record)}
}

// Subscribe registers a handler for all subsequent events
func (s *Store) Subscribe(h Handler) {
	s.handlers = append(s.handlers, h)
}

func (s *Store) emit(e Event) {
	for _, h := range s.handlers {
		h(e)
	}
}

// Get returns the record for an address
func (s *Store) Get(addr uint32) (*Record, bool) {
	r, ok := s.records[addr]
	return r, ok
}

// GetOrCreate returns the record for an address, creating it first if needed
func (s *Store) GetOrCreate(addr uint32, ts time.Time) *Record {
	if r, ok := s.records[addr]; ok {
		return r
	}
	r := &Record{
		Address:   addr,
		FirstSeen: ts,
		LastSeen:  ts,
		store:     s,
	}
	s.records[addr] = r
	r.emit(Event{Kind: EventAircraftAdded, Timestamp: ts})
	return r
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// Each calls fn for every record in address order
func (s *Store) Each(fn func(*Record)) {
	addrs := make([]uint32, 0, len(s.records))
	for a := range s.records {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, a := range addrs {
		fn(s.records[a])
	}
}

// LastSeen returns when a frame for addr was last received
func (s *Store) LastSeen(addr uint32) (time.Time, bool) {
	r, ok := s.records[addr]
	if !ok {
		return time.Time{}, false
	}
	return r.LastSeen, true
}

// Evict drops every record not seen since cutoff and returns how many were dropped
func (s *Store) Evict(cutoff time.Time) int {
	n := 0
	s.Each(func(r *Record) {
		if r.LastSeen.Before(cutoff) {
			delete(s.records, r.Address)
			s.emit(Event{Kind: EventAircraftRemoved, Address: r.Address, Timestamp: cutoff})
			n++
		}
	})
	return n
}
