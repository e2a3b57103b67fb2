package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modes1090/internal/aircraft"
	"modes1090/internal/geo"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	messages []published
	err      error
	drained  bool
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{subject: subject, data: data})
	return nil
}

func (p *fakePublisher) Drain() error {
	p.drained = true
	return nil
}

type fakeRedis struct {
	values  map[string][]byte
	ttls    map[string]time.Duration
	deleted []string
	setErr  error
	closed  bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.setErr != nil {
		cmd.SetErr(f.setErr)
		return cmd
	}
	f.values[key] = value.([]byte)
	f.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	for _, k := range keys {
		delete(f.values, k)
	}
	f.deleted = append(f.deleted, keys...)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

// TestNewEnvelope tests the JSON envelope of an event
func TestNewEnvelope(t *testing.T) {
	e := aircraft.Event{
		Kind:      aircraft.EventPositionAcquired,
		Address:   0x40621D,
		Field:     aircraft.FieldPosition,
		Value:     geo.Point{Lat: 52.2572, Lon: 3.91937},
		Valid:     true,
		Timestamp: t0,
	}

	env := NewEnvelope(e)
	_, err := uuid.Parse(env.ID)
	require.NoError(t, err)
	assert.Equal(t, "position_acquired", env.Kind)
	assert.Equal(t, "40621D", env.Address)
	assert.Equal(t, "position", env.Field)
	assert.Equal(t, "2025-06-01T12:00:00Z", env.Timestamp)

	assert.NotEqual(t, env.ID, NewEnvelope(e).ID)
}

// TestNATSHandle tests publishing events on kind subjects
func TestNATSHandle(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATS(pub, "", testLogger())

	store := aircraft.NewStore()
	store.Subscribe(n.Handle)

	r := store.GetOrCreate(0x4840D6, t0)
	r.ApplyCallsign("KLM1023", t0)

	require.Len(t, pub.messages, 2)
	assert.Equal(t, "modes1090.aircraft_added", pub.messages[0].subject)
	assert.Equal(t, "modes1090.field_updated", pub.messages[1].subject)

	var env Envelope
	require.NoError(t, json.Unmarshal(pub.messages[1].data, &env))
	assert.Equal(t, "4840D6", env.Address)
	assert.Equal(t, "callsign", env.Field)
	assert.Equal(t, "KLM1023", env.Value)
	assert.Equal(t, uint64(2), n.Published())

	require.NoError(t, n.Close())
	assert.True(t, pub.drained)
}

// TestNATSPublishFailure tests that failures are counted and not fatal
func TestNATSPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection closed")}
	n := NewNATS(pub, "adsb", testLogger())

	n.Handle(aircraft.Event{Kind: aircraft.EventAircraftAdded, Address: 1, Timestamp: t0})
	assert.Equal(t, uint64(0), n.Published())
	assert.Equal(t, uint64(1), n.Failed())
	assert.Equal(t, "adsb.aircraft_removed", n.Subject(aircraft.EventAircraftRemoved))
}

// TestSnapshotFlush tests writing changed aircraft with a TTL
func TestSnapshotFlush(t *testing.T) {
	client := newFakeRedis()
	store := aircraft.NewStore()
	s := NewSnapshot(client, store, time.Minute, testLogger())
	store.Subscribe(s.Handle)

	r := store.GetOrCreate(0x40621D, t0)
	r.Seen(t0)
	r.ApplyAltitude(38000, t0)
	r.ApplyPosition(geo.Point{Lat: 52.2572, Lon: 3.91937}, t0)
	assert.Equal(t, 1, s.Pending())

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 0, s.Pending())

	data, ok := client.values["aircraft:40621D"]
	require.True(t, ok)
	assert.Equal(t, time.Minute, client.ttls["aircraft:40621D"])

	var state State
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, "40621D", state.Address)
	assert.Equal(t, uint64(1), state.Messages)
	require.NotNil(t, state.Altitude)
	assert.Equal(t, 38000, *state.Altitude)
	require.NotNil(t, state.Position)
	assert.InDelta(t, 52.2572, state.Position.Lat, 1e-9)
	assert.Nil(t, state.GroundSpeed)
	assert.Empty(t, state.Callsign)

	// Nothing changed, nothing written
	client.values = make(map[string][]byte)
	require.NoError(t, s.Flush(context.Background()))
	assert.Empty(t, client.values)
}

// TestSnapshotRemoved tests deletion of evicted aircraft
func TestSnapshotRemoved(t *testing.T) {
	client := newFakeRedis()
	store := aircraft.NewStore()
	s := NewSnapshot(client, store, 0, testLogger())
	store.Subscribe(s.Handle)

	store.GetOrCreate(0x3C4DD2, t0)
	require.NoError(t, s.Flush(context.Background()))
	require.Contains(t, client.values, "aircraft:3C4DD2")
	assert.Equal(t, DefaultSnapshotTTL, client.ttls["aircraft:3C4DD2"])

	store.Evict(t0.Add(time.Minute))
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, []string{"aircraft:3C4DD2"}, client.deleted)
	assert.NotContains(t, client.values, "aircraft:3C4DD2")
}

// TestSnapshotFlushError tests that failed writes stay pending
func TestSnapshotFlushError(t *testing.T) {
	client := newFakeRedis()
	client.setErr = errors.New("READONLY")
	store := aircraft.NewStore()
	s := NewSnapshot(client, store, time.Minute, testLogger())
	store.Subscribe(s.Handle)

	store.GetOrCreate(0x3C4DD2, t0)
	err := s.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")
	assert.Equal(t, 1, s.Pending())

	client.setErr = nil
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 0, s.Pending())

	require.NoError(t, s.Close())
	assert.True(t, client.closed)
}
