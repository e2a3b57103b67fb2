package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"modes1090/internal/beast"
)

const tcpScheme = "tcp://"

// OpenInput opens the configured frame source
func OpenInput(ctx context.Context, input string, logger *logrus.Logger) (io.ReadCloser, error) {
	switch {
	case input == "-":
		logger.Info("Reading frames from stdin")
		return io.NopCloser(os.Stdin), nil

	case strings.HasPrefix(input, tcpScheme):
		addr := strings.TrimPrefix(input, tcpScheme)
		dialer := net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
		}
		logger.WithField("address", addr).Info("Connected to frame source")
		return conn, nil

	default:
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		logger.WithField("file", input).Info("Reading frames from file")
		return f, nil
	}
}

// NewFrameDecoder returns the decoder for an input format
func NewFrameDecoder(format string, logger *logrus.Logger) (beast.FrameDecoder, error) {
	switch format {
	case FormatBeast:
		return beast.NewDecoder(logger), nil
	case FormatAVR:
		return beast.NewAVRDecoder(logger), nil
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}
