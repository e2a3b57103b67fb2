package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"modes1090/internal/adsb"
	"modes1090/internal/bds"
	"modes1090/internal/dispatch"
	"modes1090/internal/geo"
	"modes1090/internal/logging"
)

// Default configuration constants
const (
	DefaultInput         = "-"
	DefaultFormat        = FormatBeast
	DefaultQueueSize     = 4096
	DefaultStatsInterval = 30 * time.Second
	DefaultFlushInterval = time.Second
	DefaultEvictAfter    = 5 * time.Minute
	DefaultSBSPrefix     = "sbs"
	DefaultNATSSubject   = "modes1090"
)

// Input formats
const (
	FormatBeast = "beast"
	FormatAVR   = "avr"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "MODES1090_"

// Policy holds the decoding limits handed to the core packages
type Policy struct {
	CPR        adsb.CPRConfig
	Tolerances bds.Tolerances
	Dispatch   dispatch.Config
}

// DefaultPolicy returns the standard limits
func DefaultPolicy() Policy {
	return Policy{
		CPR:        adsb.DefaultCPRConfig(),
		Tolerances: bds.DefaultTolerances(),
		Dispatch:   dispatch.DefaultConfig(),
	}
}

// Config holds application configuration
type Config struct {
	// Input is "-" for stdin, tcp://host:port for a network feed or a file path
	Input  string
	Format string

	// Receiver is "lat,lon" of the antenna, empty when unknown
	Receiver string

	// MaxRate drops frames above this many per second, 0 disables the limit
	MaxRate   float64
	QueueSize int

	SBSDir           string
	SBSStdout        bool
	SBSUTC           bool
	SBSRetentionDays int

	NATSURL     string
	NATSSubject string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SnapshotTTL   time.Duration

	EvictAfter    time.Duration
	StatsInterval time.Duration
	FlushInterval time.Duration

	Log    logging.Options
	Policy Policy

	ShowVersion bool
}

// DefaultConfig returns the configuration used without flags or environment
func DefaultConfig() Config {
	return Config{
		Input:         DefaultInput,
		Format:        DefaultFormat,
		QueueSize:     DefaultQueueSize,
		SBSStdout:     true,
		SBSUTC:        true,
		NATSSubject:   DefaultNATSSubject,
		EvictAfter:    DefaultEvictAfter,
		StatsInterval: DefaultStatsInterval,
		FlushInterval: DefaultFlushInterval,
		Log:           logging.DefaultOptions(),
		Policy:        DefaultPolicy(),
	}
}

// LoadEnv applies MODES1090_* environment variables on top of c. Variables
// from the given .env files are loaded first; missing files are ignored.
// Variables already set in the environment win over .env files.
func (c *Config) LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	e := envReader{}
	e.string("INPUT", &c.Input)
	e.string("FORMAT", &c.Format)
	e.string("RECEIVER", &c.Receiver)
	e.float("MAX_RATE", &c.MaxRate)
	e.int("QUEUE_SIZE", &c.QueueSize)

	e.string("SBS_DIR", &c.SBSDir)
	e.bool("SBS_STDOUT", &c.SBSStdout)
	e.bool("SBS_UTC", &c.SBSUTC)
	e.int("SBS_RETENTION_DAYS", &c.SBSRetentionDays)

	e.string("NATS_URL", &c.NATSURL)
	e.string("NATS_SUBJECT", &c.NATSSubject)

	e.string("REDIS_ADDR", &c.RedisAddr)
	e.string("REDIS_PASSWORD", &c.RedisPassword)
	e.int("REDIS_DB", &c.RedisDB)
	e.duration("SNAPSHOT_TTL", &c.SnapshotTTL)

	e.duration("EVICT_AFTER", &c.EvictAfter)
	e.duration("STATS_INTERVAL", &c.StatsInterval)
	e.duration("FLUSH_INTERVAL", &c.FlushInterval)

	e.bool("VERBOSE", &c.Log.Verbose)
	e.bool("LOG_JSON", &c.Log.JSON)
	e.string("LOG_DIR", &c.Log.Dir)

	e.bool("REQUIRE_SEEN_ADDRESS", &c.Policy.Dispatch.RequireSeenAddress)
	e.duration("SEEN_TTL", &c.Policy.Dispatch.SeenTTL)
	e.float("MAX_CLIMB_RATE", &c.Policy.Dispatch.MaxClimbRate)
	e.float("MAX_GLOBAL_RANGE", &c.Policy.CPR.MaxGlobalRange)

	return e.err
}

// envReader parses MODES1090_* variables, keeping the first error
type envReader struct {
	err error
}

func (e *envReader) lookup(name string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := os.LookupEnv(EnvPrefix + name)
	return strings.TrimSpace(v), ok
}

func (e *envReader) fail(name, value string, err error) {
	e.err = fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, value, err)
}

func (e *envReader) string(name string, dst *string) {
	if v, ok := e.lookup(name); ok {
		*dst = v
	}
}

func (e *envReader) bool(name string, dst *bool) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = b
}

func (e *envReader) int(name string, dst *int) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = n
}

func (e *envReader) float(name string, dst *float64) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = f
}

func (e *envReader) duration(name string, dst *time.Duration) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = d
}

// Validate checks that the configuration can be run
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input must not be empty")
	}
	if c.Format != FormatBeast && c.Format != FormatAVR {
		return fmt.Errorf("unknown input format %q", c.Format)
	}
	if c.MaxRate < 0 {
		return fmt.Errorf("max rate must not be negative")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive")
	}
	if c.StatsInterval <= 0 || c.FlushInterval <= 0 {
		return fmt.Errorf("intervals must be positive")
	}
	if c.EvictAfter < 0 {
		return fmt.Errorf("evict-after must not be negative")
	}
	if c.SBSRetentionDays < 0 {
		return fmt.Errorf("retention days must not be negative")
	}
	if _, err := ParseReceiver(c.Receiver); err != nil {
		return err
	}
	return nil
}

// ParseReceiver parses "lat,lon". An empty string means no receiver location.
func ParseReceiver(s string) (*geo.Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("receiver %q: expected lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("receiver latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("receiver longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("receiver %q out of range", s)
	}
	return &geo.Point{Lat: lat, Lon: lon}, nil
}
