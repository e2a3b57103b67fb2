package beast

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"modes1090/internal/adsb"
)

// Errors returned by ParseAVR
var (
	ErrShortFrame = errors.New("short frame")
	ErrBadFormat  = errors.New("bad frame format")
)

// maxLine bounds an AVR line; longer input without a newline is dropped
const maxLine = 256

// ParseAVR parses one AVR text line: "*<hex>;" or "@<12 hex counter><hex>;".
// The returned counter is 0 for the plain format.
func ParseAVR(line []byte) ([]byte, uint64, error) {
	line = bytes.TrimSpace(line)
	if len(line) < 2 || line[len(line)-1] != ';' {
		return nil, 0, fmt.Errorf("%w: %q", ErrBadFormat, line)
	}
	body := line[1 : len(line)-1]

	var counter uint64
	switch line[0] {
	case '*':
	case '@':
		if len(body) < 12 {
			return nil, 0, fmt.Errorf("%w: counter in %q", ErrShortFrame, line)
		}
		c, err := strconv.ParseUint(string(body[:12]), 16, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: counter: %v", ErrBadFormat, err)
		}
		counter = c
		body = body[12:]
	default:
		return nil, 0, fmt.Errorf("%w: prefix %q", ErrBadFormat, line[0])
	}

	data := make([]byte, hex.DecodedLen(len(body)))
	if _, err := hex.Decode(data, body); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	switch len(data) {
	case adsb.ShortFrameBytes, adsb.LongFrameBytes:
		return data, counter, nil
	}
	if len(data) < adsb.LongFrameBytes {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}
	return nil, 0, fmt.Errorf("%w: %d bytes", ErrBadFormat, len(data))
}

// AVRDecoder decodes newline separated AVR text
type AVRDecoder struct {
	logger *logrus.Logger
	buffer []byte
	clock  *counterClock

	invalid uint64
}

// NewAVRDecoder creates a new AVR decoder
func NewAVRDecoder(logger *logrus.Logger) *AVRDecoder {
	return newAVRDecoder(logger, nil)
}

func newAVRDecoder(logger *logrus.Logger, now func() time.Time) *AVRDecoder {
	return &AVRDecoder{
		logger: logger,
		clock:  newCounterClock(now),
	}
}

// Invalid returns the number of lines that could not be parsed
func (d *AVRDecoder) Invalid() uint64 {
	return d.invalid
}

// Decode appends data to the internal buffer and returns the frames of every
// complete line. Malformed lines are counted and skipped.
func (d *AVRDecoder) Decode(data []byte) ([]*adsb.Frame, error) {
	d.buffer = append(d.buffer, data...)

	var frames []*adsb.Frame
	for {
		i := bytes.IndexByte(d.buffer, '\n')
		if i < 0 {
			break
		}
		line := d.buffer[:i]
		d.buffer = d.buffer[i+1:]
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		payload, counter, err := ParseAVR(line)
		if err != nil {
			d.invalid++
			d.logger.WithError(err).Debug("Skipping AVR line")
			continue
		}
		frames = append(frames, &adsb.Frame{
			Data:      payload,
			Timestamp: d.clock.timestamp(counter),
		})
	}

	if len(d.buffer) > maxLine {
		d.invalid++
		d.buffer = d.buffer[:0]
	}
	return frames, nil
}
