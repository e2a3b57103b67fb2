package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"modes1090/internal/aircraft"
)

// DefaultSnapshotTTL bounds how long a snapshot outlives its last update
const DefaultSnapshotTTL = 5 * time.Minute

// RedisClient defines the Redis operations the snapshot sink uses
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Snapshot keeps the latest state of every aircraft under aircraft:<hex>.
// Changed aircraft are collected from store events and written by Flush.
//
// Handle and Flush must be called from the goroutine that owns the store.
type Snapshot struct {
	client RedisClient
	store  *aircraft.Store
	ttl    time.Duration
	logger *logrus.Logger

	dirty   map[uint32]struct{}
	removed []uint32
}

// ConnectRedis dials a Redis server and checks the connection
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewSnapshot creates a snapshot sink for store
func NewSnapshot(client RedisClient, store *aircraft.Store, ttl time.Duration, logger *logrus.Logger) *Snapshot {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Snapshot{
		client: client,
		store:  store,
		ttl:    ttl,
		logger: logger,
		dirty:  make(map[uint32]struct{}),
	}
}

// Key returns the Redis key of an aircraft
func Key(addr uint32) string {
	return "aircraft:" + HexIdent(addr)
}

// Handle records which aircraft changed. It matches aircraft.Handler.
func (s *Snapshot) Handle(e aircraft.Event) {
	switch e.Kind {
	case aircraft.EventAircraftRemoved:
		delete(s.dirty, e.Address)
		s.removed = append(s.removed, e.Address)
	case aircraft.EventAircraftAdded, aircraft.EventFieldUpdated, aircraft.EventPositionAcquired:
		s.dirty[e.Address] = struct{}{}
	}
}

// Pending returns the number of aircraft waiting to be written
func (s *Snapshot) Pending() int {
	return len(s.dirty) + len(s.removed)
}

// Flush writes every changed aircraft and deletes removed ones
func (s *Snapshot) Flush(ctx context.Context) error {
	var errs int
	var last error

	for addr := range s.dirty {
		r, ok := s.store.Get(addr)
		if !ok {
			delete(s.dirty, addr)
			continue
		}
		data, err := json.Marshal(NewState(r))
		if err != nil {
			return fmt.Errorf("failed to marshal aircraft state: %w", err)
		}
		if err := s.client.Set(ctx, Key(addr), data, s.ttl).Err(); err != nil {
			errs++
			last = err
			continue
		}
		delete(s.dirty, addr)
	}

	if len(s.removed) > 0 {
		keys := make([]string, len(s.removed))
		for i, addr := range s.removed {
			keys[i] = Key(addr)
		}
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			errs++
			last = err
		} else {
			s.removed = s.removed[:0]
		}
	}

	if errs > 0 {
		s.logger.WithError(last).WithField("failures", errs).Warn("Snapshot flush incomplete")
		return fmt.Errorf("failed to write %d snapshots: %w", errs, last)
	}
	return nil
}

// Close closes the Redis client
func (s *Snapshot) Close() error {
	return s.client.Close()
}
