package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew tests level selection and file output
func TestNew(t *testing.T) {
	t.Run("Default level", func(t *testing.T) {
		logger, closer, err := New(DefaultOptions())
		require.NoError(t, err)
		defer closer.Close()
		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	})

	t.Run("Verbose", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Verbose = true
		logger, closer, err := New(opts)
		require.NoError(t, err)
		defer closer.Close()
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	})

	t.Run("JSON formatter", func(t *testing.T) {
		opts := DefaultOptions()
		opts.JSON = true
		logger, closer, err := New(opts)
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	})

	t.Run("Log directory", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Dir = filepath.Join(t.TempDir(), "logs")
		logger, closer, err := New(opts)
		require.NoError(t, err)

		logger.Info("receiver started")
		require.NoError(t, closer.Close())

		content, err := os.ReadFile(filepath.Join(opts.Dir, "modes1090.log"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "receiver started")
	})
}
