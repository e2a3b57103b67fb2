// Package logging builds the process logger and the daily rotating files used
// for BaseStation output.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how verbosely the process logs
type Options struct {
	Verbose bool
	JSON    bool

	// Dir enables a size-rotated log file in addition to stderr
	Dir        string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
}

// DefaultOptions returns the options used when no flags are given
func DefaultOptions() Options {
	return Options{
		MaxSizeMB:  64,
		MaxAgeDays: 14,
		MaxBackups: 4,
	}
}

// New creates a logger. The returned closer releases the log file, if any.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if opts.Dir == "" {
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, nil, err
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "modes1090.log"),
		MaxSize:    opts.MaxSizeMB, // MB
		MaxAge:     opts.MaxAgeDays,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, w))

	logger.WithField("file", w.Filename).Debug("Logging to file")

	return logger, w, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
