// Package beast turns receiver byte streams (Beast binary and AVR text) into
// Mode S frames.
package beast

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"modes1090/internal/adsb"
)

// maxBuffer bounds the bytes kept while waiting for the rest of a message
const maxBuffer = 4096

// Decoder decodes Beast mode messages
type Decoder struct {
	logger *logrus.Logger
	buffer []byte
	clock  *counterClock

	skipped uint64
}

// NewDecoder creates a new Beast decoder
func NewDecoder(logger *logrus.Logger) *Decoder {
	return newDecoder(logger, nil)
}

func newDecoder(logger *logrus.Logger, now func() time.Time) *Decoder {
	return &Decoder{
		logger: logger,
		buffer: make([]byte, 0, maxBuffer),
		clock:  newCounterClock(now),
	}
}

// Skipped returns the number of messages that were not Mode S frames
func (d *Decoder) Skipped() uint64 {
	return d.skipped
}

// Decode appends data to the internal buffer and returns the Mode S frames
// of every complete message. A partial trailing message is kept for the
// next call.
func (d *Decoder) Decode(data []byte) ([]*adsb.Frame, error) {
	msgs := d.Messages(data)

	frames := make([]*adsb.Frame, 0, len(msgs))
	for _, msg := range msgs {
		if !msg.IsModeS() {
			d.skipped++
			continue
		}
		frames = append(frames, &adsb.Frame{
			Data:      msg.Data,
			Timestamp: d.clock.timestamp(msg.Counter),
			Signal:    msg.SignalLevel(),
		})
	}
	return frames, nil
}

// Messages appends data to the internal buffer and returns every complete message
func (d *Decoder) Messages(data []byte) []*Message {
	d.buffer = append(d.buffer, data...)

	var messages []*Message
	for {
		start := d.findSync()
		if start < 0 {
			d.buffer = d.buffer[:0]
			break
		}
		d.buffer = d.buffer[start:]

		msg, consumed, err := d.parse()
		if err != nil {
			d.logger.WithError(err).Debug("Failed to decode beast message")
			d.buffer = d.buffer[consumed:]
			continue
		}
		if msg == nil {
			// Incomplete message
			break
		}
		messages = append(messages, msg)
		d.buffer = d.buffer[consumed:]
	}

	if len(d.buffer) > maxBuffer {
		d.logger.WithFields(logrus.Fields{
			"buffer_size": len(d.buffer),
		}).Debug("Beast buffer overflow, clearing")
		d.buffer = d.buffer[:0]
	}
	return messages
}

// findSync returns the index of the next sync byte that starts a message
func (d *Decoder) findSync() int {
	for i := 0; i < len(d.buffer); i++ {
		if d.buffer[i] != SyncByte {
			continue
		}
		if i+1 < len(d.buffer) && d.buffer[i+1] == SyncByte {
			// Escaped data byte outside a message
			i++
			continue
		}
		return i
	}
	return -1
}

// parse decodes the message at the start of the buffer. It returns a nil
// message and nil error when more data is needed, and on error the number
// of bytes to discard before resynchronising.
func (d *Decoder) parse() (*Message, int, error) {
	if len(d.buffer) < 2 {
		return nil, 0, nil
	}

	messageType := d.buffer[1]
	n := dataLength(messageType)
	if n == 0 {
		return nil, 1, fmt.Errorf("unknown message type 0x%02x", messageType)
	}

	// Counter, signal and data bytes, with 0x1A 0x1A unescaped
	body := make([]byte, 0, headerLen+n)
	i := 2
	for len(body) < headerLen+n {
		if i >= len(d.buffer) {
			return nil, 0, nil
		}
		b := d.buffer[i]
		if b == SyncByte {
			if i+1 >= len(d.buffer) {
				return nil, 0, nil
			}
			if d.buffer[i+1] != SyncByte {
				return nil, i, fmt.Errorf("truncated message type 0x%02x", messageType)
			}
			i++
		}
		body = append(body, b)
		i++
	}

	var counter uint64
	for _, b := range body[:6] {
		counter = counter<<8 | uint64(b)
	}
	return &Message{
		Type:    messageType,
		Counter: counter,
		Signal:  body[6],
		Data:    body[headerLen:],
	}, i, nil
}
