package aircraft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modes1090/internal/adsb"
	"modes1090/internal/geo"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	events []Event
}

func (r *recorder) handle(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func newRecordedStore() (*Store, *recorder) {
	s := NewStore()
	rec := &recorder{}
	s.Subscribe(rec.handle)
	return s, rec
}

// TestGetOrCreate tests record creation and lookup
func TestGetOrCreate(t *testing.T) {
	s, rec := newRecordedStore()

	_, ok := s.Get(0x4840D6)
	assert.False(t, ok)

	r := s.GetOrCreate(0x4840D6, t0)
	assert.Equal(t, uint32(0x4840D6), r.Address)
	assert.Equal(t, t0, r.FirstSeen)
	assert.Same(t, r, s.GetOrCreate(0x4840D6, t0.Add(time.Second)))
	assert.Equal(t, 1, s.Len())

	require.Len(t, rec.events, 1)
	assert.Equal(t, EventAircraftAdded, rec.events[0].Kind)
	assert.Equal(t, uint32(0x4840D6), rec.events[0].Address)

	got, ok := s.Get(0x4840D6)
	require.True(t, ok)
	assert.Same(t, r, got)
}

// TestMonotonicTimestamps tests that older updates never overwrite newer ones
func TestMonotonicTimestamps(t *testing.T) {
	s, rec := newRecordedStore()
	r := s.GetOrCreate(0xABCDEF, t0)
	rec.events = nil

	assert.True(t, r.ApplyAltitude(35000, t0.Add(2*time.Second)))
	assert.False(t, r.ApplyAltitude(34000, t0.Add(time.Second)))
	assert.Equal(t, 35000, r.Altitude.Value)
	assert.Equal(t, t0.Add(2*time.Second), r.Altitude.Updated)

	// Equal timestamps are accepted
	assert.True(t, r.ApplyAltitude(35025, t0.Add(2*time.Second)))
	assert.Equal(t, 35025, r.Altitude.Value)

	// Fields are independent
	assert.True(t, r.ApplyCallsign("KLM1023", t0))
	assert.False(t, r.GroundSpeed.Valid)

	require.Len(t, rec.events, 3)
	for _, e := range rec.events {
		assert.Equal(t, EventFieldUpdated, e.Kind)
		assert.True(t, e.Valid)
	}
	assert.Equal(t, FieldCallsign, rec.events[2].Field)
	assert.Equal(t, "KLM1023", rec.events[2].Value)
}

// TestPositionAcquired tests that the first fix is reported exactly once
func TestPositionAcquired(t *testing.T) {
	s, rec := newRecordedStore()
	r := s.GetOrCreate(0x485020, t0)
	assert.False(t, r.HasFix())

	p := geo.Point{Lat: 52.2572, Lon: 3.9194}
	require.True(t, r.ApplyPosition(p, t0.Add(time.Second)))
	require.True(t, r.ApplyPosition(geo.Point{Lat: 52.26, Lon: 3.92}, t0.Add(2*time.Second)))
	assert.True(t, r.HasFix())

	assert.Equal(t, []EventKind{
		EventAircraftAdded,
		EventFieldUpdated,
		EventPositionAcquired,
		EventFieldUpdated,
	}, rec.kinds())
	assert.Equal(t, p, rec.events[2].Value)
}

// TestOnGroundTransition tests that a surface change discards buffered CPR samples
func TestOnGroundTransition(t *testing.T) {
	tests := []struct {
		name     string
		buffered bool
		from, to bool
		lost     bool
	}{
		{"Landing with samples", true, false, true, true},
		{"Takeoff with samples", true, true, false, true},
		{"Landing without samples", false, false, true, false},
		{"No change", true, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newRecordedStore()
			r := s.GetOrCreate(1, t0)
			require.True(t, r.ApplyOnGround(tt.from, t0))
			if tt.buffered {
				r.AddCPR(adsb.CPRSample{Lat: 1, Lon: 2, Surface: tt.from, Timestamp: t0})
			}
			rec.events = nil

			require.True(t, r.ApplyOnGround(tt.to, t0.Add(time.Second)))

			if tt.lost {
				assert.Equal(t, []EventKind{EventFieldUpdated, EventPositionLost}, rec.kinds())
				assert.True(t, r.CPR.Empty())
			} else {
				assert.Equal(t, []EventKind{EventFieldUpdated}, rec.kinds())
				assert.Equal(t, !tt.buffered, r.CPR.Empty())
			}
		})
	}
}

// TestAddCPRDomainChange tests that mixing surface and airborne samples resets the pair
func TestAddCPRDomainChange(t *testing.T) {
	s, rec := newRecordedStore()
	r := s.GetOrCreate(1, t0)
	rec.events = nil

	r.AddCPR(adsb.CPRSample{Lat: 10, Lon: 20, Timestamp: t0})
	r.AddCPR(adsb.CPRSample{Lat: 11, Lon: 21, Odd: true, Timestamp: t0.Add(time.Second)})
	assert.Empty(t, rec.events)
	assert.True(t, r.CPR.Usable(10*time.Second))

	r.AddCPR(adsb.CPRSample{Lat: 12, Lon: 22, Surface: true, Timestamp: t0.Add(2 * time.Second)})
	assert.Equal(t, []EventKind{EventPositionLost}, rec.kinds())
	assert.Nil(t, r.CPR.Odd)
	require.NotNil(t, r.CPR.Even)
	assert.True(t, r.CPR.Even.Surface)
}

// TestMergeCapabilities tests that capability reports accumulate
func TestMergeCapabilities(t *testing.T) {
	s := NewStore()
	r := s.GetOrCreate(1, t0)

	r.MergeCapabilities(0x800000, t0)
	r.MergeCapabilities(0x000001, t0.Add(time.Second))
	assert.Equal(t, uint32(0x800001), r.Capabilities.Value)
	assert.True(t, r.Capabilities.Valid)
}

// TestReference tests the recency rule for local CPR references
func TestReference(t *testing.T) {
	s := NewStore()
	r := s.GetOrCreate(1, t0)
	assert.Nil(t, r.Reference(t0, time.Minute))

	r.ApplyPosition(geo.Point{Lat: 1, Lon: 2}, t0)
	ref := r.Reference(t0.Add(30*time.Second), time.Minute)
	require.NotNil(t, ref)
	assert.Equal(t, geo.Point{Lat: 1, Lon: 2}, *ref)
	assert.Nil(t, r.Reference(t0.Add(2*time.Minute), time.Minute))
}

// TestEvict tests removal of silent aircraft
func TestEvict(t *testing.T) {
	s, rec := newRecordedStore()
	s.GetOrCreate(3, t0)
	old := s.GetOrCreate(1, t0)
	fresh := s.GetOrCreate(2, t0)
	fresh.Seen(t0.Add(time.Minute))
	old.Seen(t0.Add(-time.Minute))
	rec.events = nil

	last, ok := s.LastSeen(2)
	require.True(t, ok)
	assert.Equal(t, t0.Add(time.Minute), last)
	assert.Equal(t, uint64(1), fresh.Messages)

	assert.Equal(t, 2, s.Evict(t0.Add(30*time.Second)))
	assert.Equal(t, 1, s.Len())
	_, ok = s.LastSeen(1)
	assert.False(t, ok)

	require.Len(t, rec.events, 2)
	assert.Equal(t, EventAircraftRemoved, rec.events[0].Kind)
	assert.Equal(t, uint32(1), rec.events[0].Address)
	assert.Equal(t, uint32(3), rec.events[1].Address)
}

// TestEach tests iteration in address order
func TestEach(t *testing.T) {
	s := NewStore()
	for _, a := range []uint32{0x30, 0x10, 0x20} {
		s.GetOrCreate(a, t0)
	}

	var got []uint32
	s.Each(func(r *Record) { got = append(got, r.Address) })
	assert.Equal(t, []uint32{0x10, 0x20, 0x30}, got)
}

// TestEventKindString tests event kind names
func TestEventKindString(t *testing.T) {
	assert.Equal(t, "position_acquired", EventPositionAcquired.String())
	assert.Equal(t, "EventKind(42)", EventKind(42).String())
}
