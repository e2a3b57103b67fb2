package sink

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"modes1090/internal/aircraft"
)

// DefaultSubjectPrefix is prepended to the event kind to form the subject
const DefaultSubjectPrefix = "modes1090"

// Publisher is the part of a NATS connection the sink uses
type Publisher interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATS publishes every store event as a JSON envelope on
// <prefix>.<event kind>, e.g. modes1090.position_acquired.
type NATS struct {
	conn   Publisher
	prefix string
	logger *logrus.Logger

	published atomic.Uint64
	failed    atomic.Uint64
}

// ConnectNATS dials a NATS server
func ConnectNATS(url, prefix string, logger *logrus.Logger) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("modes1090"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.WithField("url", url).Info("Connected to NATS")
	return NewNATS(nc, prefix, logger), nil
}

// NewNATS wraps an existing connection
func NewNATS(conn Publisher, prefix string, logger *logrus.Logger) *NATS {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATS{conn: conn, prefix: prefix, logger: logger}
}

// Subject returns the subject an event kind is published on
func (n *NATS) Subject(kind aircraft.EventKind) string {
	return n.prefix + "." + kind.String()
}

// Handle publishes one event. It matches aircraft.Handler.
func (n *NATS) Handle(e aircraft.Event) {
	if err := n.publish(e); err != nil {
		n.failed.Add(1)
		n.logger.WithError(err).WithFields(logrus.Fields{
			"kind":    e.Kind.String(),
			"address": HexIdent(e.Address),
		}).Debug("Event not published")
		return
	}
	n.published.Add(1)
}

func (n *NATS) publish(e aircraft.Event) error {
	data, err := json.Marshal(NewEnvelope(e))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.conn.Publish(n.Subject(e.Kind), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Published returns the number of events published
func (n *NATS) Published() uint64 { return n.published.Load() }

// Failed returns the number of events that could not be published
func (n *NATS) Failed() uint64 { return n.failed.Load() }

// Close flushes pending messages and closes the connection
func (n *NATS) Close() error {
	if err := n.conn.Drain(); err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}
