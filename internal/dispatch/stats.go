package dispatch

import (
	"sync/atomic"

	"modes1090/internal/bds"
)

// Stats counts dispatched frames. Counters may be read from any goroutine.
type Stats struct {
	frames   atomic.Uint64
	df       [32]atomic.Uint64
	tc       [32]atomic.Uint64
	results  [numResults]atomic.Uint64
	bds      [bds.NumRegisters]atomic.Uint64
	verdicts [3]atomic.Uint64
}

// StatsSnapshot is a point in time copy of the counters
type StatsSnapshot struct {
	Frames    uint64
	DF        map[uint8]uint64
	TC        map[uint8]uint64
	Results   map[string]uint64
	Registers map[string]uint64
	Verdicts  map[string]uint64
}

func (s *Stats) countFrame(c Class) {
	s.frames.Add(1)
	s.df[c.DF&0x1F].Add(1)
	if c.Kind == KindExtendedSquitter {
		s.tc[c.TC&0x1F].Add(1)
	}
}

func (s *Stats) countResult(r Result) {
	s.results[r].Add(1)
}

func (s *Stats) countBDS(p bds.Payload, v bds.Verdict) {
	s.verdicts[v].Add(1)
	if p != nil {
		s.bds[p.Register()].Add(1)
	}
}

// Frames returns the number of frames seen
func (s *Stats) Frames() uint64 {
	return s.frames.Load()
}

// Result returns the number of frames with the given outcome
func (s *Stats) Result(r Result) uint64 {
	return s.results[r].Load()
}

// Snapshot copies the non-zero counters
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Frames:    s.frames.Load(),
		DF:        make(map[uint8]uint64),
		TC:        make(map[uint8]uint64),
		Results:   make(map[string]uint64),
		Registers: make(map[string]uint64),
		Verdicts:  make(map[string]uint64),
	}
	for i := range s.df {
		if n := s.df[i].Load(); n > 0 {
			snap.DF[uint8(i)] = n
		}
		if n := s.tc[i].Load(); n > 0 {
			snap.TC[uint8(i)] = n
		}
	}
	for i := range s.results {
		if n := s.results[i].Load(); n > 0 {
			snap.Results[Result(i).String()] = n
		}
	}
	for i := range s.bds {
		if n := s.bds[i].Load(); n > 0 {
			snap.Registers[bds.Register(i).String()] = n
		}
	}
	for i := range s.verdicts {
		if n := s.verdicts[i].Load(); n > 0 {
			snap.Verdicts[bds.Verdict(i).String()] = n
		}
	}
	return snap
}
