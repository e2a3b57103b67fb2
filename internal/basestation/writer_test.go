package basestation

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modes1090/internal/aircraft"
	"modes1090/internal/geo"
)

var (
	frameTime  = time.Date(2025, 6, 1, 12, 0, 0, 500_000_000, time.UTC)
	loggedTime = time.Date(2025, 6, 1, 12, 0, 1, 0, time.UTC)
)

func newTestWriter(out *bytes.Buffer) (*Writer, *aircraft.Store) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	store := aircraft.NewStore()
	w := NewWriter(out, store, logger)
	w.now = func() time.Time { return loggedTime }
	return w, store
}

func lines(out *bytes.Buffer) []string {
	s := strings.TrimSpace(out.String())
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// TestMessageFormat tests column layout per message type
func TestMessageFormat(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		expected string
	}{
		{
			name: "Airborne position",
			msg: Message{
				Type: TypeMessage, Transmission: TransmissionAirborne,
				SessionID: 1, AircraftID: 2, HexIdent: "40621D", FlightID: 2,
				Generated: frameTime, Logged: loggedTime,
				Altitude: "38000", Latitude: "52.25720", Longitude: "3.91937",
				Alert: "0", Emergency: "0", SPI: "0", OnGround: "0",
			},
			expected: "MSG,3,1,2,40621D,2,2025/06/01,12:00:00.500,2025/06/01,12:00:01.000,,38000,,,52.25720,3.91937,,,0,0,0,0",
		},
		{
			name: "New aircraft",
			msg: Message{
				Type: TypeAircraft, SessionID: 1, AircraftID: 1, HexIdent: "4840D6", FlightID: 1,
				Generated: frameTime, Logged: loggedTime,
			},
			expected: "AIR,,1,1,4840D6,1,2025/06/01,12:00:00.500,2025/06/01,12:00:01.000",
		},
		{
			name: "Removed aircraft",
			msg: Message{
				Type: TypeStatus, SessionID: 1, AircraftID: 1, HexIdent: "4840D6", FlightID: 1,
				Generated: frameTime, Logged: loggedTime, Status: StatusRemoved,
			},
			expected: "STA,,1,1,4840D6,1,2025/06/01,12:00:00.500,2025/06/01,12:00:01.000,RM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.msg.Format()
			assert.Equal(t, tt.expected, got)
			if tt.msg.Type == TypeMessage {
				assert.Len(t, strings.Split(got, ","), 22)
			}
		})
	}
}

// TestWriterNewAircraft tests the AIR line and per-aircraft identifiers
func TestWriterNewAircraft(t *testing.T) {
	var out bytes.Buffer
	w, store := newTestWriter(&out)

	store.GetOrCreate(0x4840D6, frameTime)
	store.GetOrCreate(0x40621D, frameTime)
	require.NoError(t, w.Flush())

	got := lines(&out)
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], "AIR,,1,1,4840D6,1,"))
	assert.True(t, strings.HasPrefix(got[1], "AIR,,1,2,40621D,2,"))
	assert.Equal(t, uint64(2), w.Written())
}

// TestWriterCoalescesFields tests that one frame yields one line per transmission type
func TestWriterCoalescesFields(t *testing.T) {
	var out bytes.Buffer
	w, store := newTestWriter(&out)

	r := store.GetOrCreate(0x485020, frameTime)
	require.NoError(t, w.Flush())
	out.Reset()

	r.ApplyGroundSpeed(159.2, frameTime)
	r.ApplyTrack(182.88, frameTime)
	r.ApplyVerticalRate(-832, frameTime)
	require.NoError(t, w.Flush())

	got := lines(&out)
	require.Len(t, got, 1)
	assert.Equal(t, "MSG,4,1,1,485020,1,2025/06/01,12:00:00.500,2025/06/01,12:00:01.000,,,159,183,,,-832,,,,,", got[0])
}

// TestWriterPosition tests airborne and surface position lines
func TestWriterPosition(t *testing.T) {
	tests := []struct {
		name     string
		onGround bool
		expected string
	}{
		{
			name:     "Airborne",
			onGround: false,
			expected: "MSG,3,1,1,40621D,1,2025/06/01,12:00:00.500,2025/06/01,12:00:01.000,,38000,,,52.25720,3.91937,,,0,0,0,0",
		},
		{
			name:     "Surface",
			onGround: true,
			expected: "MSG,2,1,1,40621D,1,2025/06/01,12:00:00.500,2025/06/01,12:00:01.000,,38000,17,92,52.25720,3.91937,,,0,0,0,-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			w, store := newTestWriter(&out)

			r := store.GetOrCreate(0x40621D, frameTime)
			r.ApplyOnGround(tt.onGround, frameTime)
			if tt.onGround {
				r.ApplyGroundSpeed(17, frameTime)
				r.ApplyTrack(92.1, frameTime)
			}
			require.NoError(t, w.Flush())
			out.Reset()

			r.ApplyAltitude(38000, frameTime)
			r.ApplyPosition(geo.Point{Lat: 52.2572, Lon: 3.91937}, frameTime)
			require.NoError(t, w.Flush())

			// The altitude is folded into the position line
			got := lines(&out)
			require.Len(t, got, 1)
			assert.Equal(t, tt.expected, got[0])
		})
	}
}

// TestWriterSquawk tests identity lines with the alert and emergency flags
func TestWriterSquawk(t *testing.T) {
	var out bytes.Buffer
	w, store := newTestWriter(&out)

	r := store.GetOrCreate(0x510AF9, frameTime)
	r.ApplySquawk("0356", frameTime)
	require.NoError(t, w.Flush())
	out.Reset()

	ts := frameTime.Add(time.Second)
	r.ApplySquawk("7500", ts)
	r.ApplyEmergency("unlawful interference", ts)
	require.NoError(t, w.Flush())

	got := lines(&out)
	require.Len(t, got, 1)
	fields := strings.Split(got[0], ",")
	require.Len(t, fields, 22)
	assert.Equal(t, "6", fields[1])
	assert.Equal(t, "7500", fields[17])
	assert.Equal(t, "-1", fields[18], "alert")
	assert.Equal(t, "-1", fields[19], "emergency")
}

// TestWriterIdentification tests callsign lines
func TestWriterIdentification(t *testing.T) {
	var out bytes.Buffer
	w, store := newTestWriter(&out)

	r := store.GetOrCreate(0x4840D6, frameTime)
	r.ApplyCallsign("KLM1023", frameTime)
	require.NoError(t, w.Flush())

	got := lines(&out)
	require.Len(t, got, 2)
	assert.Equal(t, "MSG,1,1,1,4840D6,1,2025/06/01,12:00:00.500,2025/06/01,12:00:01.000,KLM1023,,,,,,,,,,,", got[1])
}

// TestWriterRemoved tests STA lines on eviction
func TestWriterRemoved(t *testing.T) {
	var out bytes.Buffer
	w, store := newTestWriter(&out)

	r := store.GetOrCreate(0x3C4DD2, frameTime)
	r.ApplyAltitude(10000, frameTime)
	store.Evict(frameTime.Add(time.Minute))
	require.NoError(t, w.Flush())

	// Pending updates of removed aircraft are dropped
	got := lines(&out)
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], "AIR,"))
	assert.True(t, strings.HasPrefix(got[1], "STA,,1,1,3C4DD2,1,"))
	assert.True(t, strings.HasSuffix(got[1], ",RM"))
}

// TestWriterIgnoresUnmappedFields tests fields without a BaseStation column
func TestWriterIgnoresUnmappedFields(t *testing.T) {
	var out bytes.Buffer
	w, store := newTestWriter(&out)

	r := store.GetOrCreate(0x3C4DD2, frameTime)
	require.NoError(t, w.Flush())
	out.Reset()

	r.ApplyTemperature(-40.5, frameTime)
	r.ApplyMach(0.78, frameTime)
	require.NoError(t, w.Flush())
	assert.Empty(t, out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

// TestWriterError tests that write failures are reported
func TestWriterError(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	store := aircraft.NewStore()
	w := NewWriter(failingWriter{}, store, logger)

	store.GetOrCreate(0x3C4DD2, frameTime)
	err := w.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
