package logging

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

// TestNewDailyFile tests directory creation and the initial file name
func TestNewDailyFile(t *testing.T) {
	tests := []struct {
		name     string
		subdir   string
		useUTC   bool
		expected string
	}{
		{
			name:     "Flat directory",
			subdir:   "sbs",
			useUTC:   true,
			expected: "sbs_2025-06-01.log",
		},
		{
			name:     "Nested directory",
			subdir:   "nested/output/sbs",
			useUTC:   true,
			expected: "sbs_2025-06-01.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), tt.subdir)
			clock := &fakeClock{t: time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)}

			d, err := newDailyFile(dir, "sbs", tt.useUTC, testLogger(), clock.now)
			require.NoError(t, err)
			defer d.Close()

			assert.DirExists(t, dir)
			assert.Equal(t, filepath.Join(dir, tt.expected), d.CurrentFile())
			assert.FileExists(t, d.CurrentFile())
		})
	}
}

// TestDailyFileWrite tests that writes land in the current file
func TestDailyFileWrite(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	d, err := newDailyFile(t.TempDir(), "sbs", true, testLogger(), clock.now)
	require.NoError(t, err)
	defer d.Close()

	line := "MSG,3,1,1,4840D6,1,2025/06/01,12:00:00.000,2025/06/01,12:00:00.000,,38000,,,,,,,,,,0\n"
	n, err := d.Write([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, len(line), n)

	content, err := os.ReadFile(d.CurrentFile())
	require.NoError(t, err)
	assert.Equal(t, line, string(content))
}

// TestDailyFileRotation tests the day change switches files and compresses the old one
func TestDailyFileRotation(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)}
	d, err := newDailyFile(dir, "sbs", true, testLogger(), clock.now)
	require.NoError(t, err)

	_, err = d.Write([]byte("day one\n"))
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = d.Write([]byte("day two\n"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "sbs_2025-06-02.log"), d.CurrentFile())
	require.NoError(t, d.Close())

	assert.NoFileExists(t, filepath.Join(dir, "sbs_2025-06-01.log"))
	compressed := filepath.Join(dir, "sbs_2025-06-01.log.gz")
	require.FileExists(t, compressed)

	f, err := os.Open(compressed)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	content, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, "day one\n", string(content))

	today, err := os.ReadFile(filepath.Join(dir, "sbs_2025-06-02.log"))
	require.NoError(t, err)
	assert.Equal(t, "day two\n", string(today))
}

// TestDailyFileLocalTime tests the day boundary follows local time when UTC is off
func TestDailyFileLocalTime(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	clock := &fakeClock{t: time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC).In(loc)}

	local, err := newDailyFile(t.TempDir(), "sbs", false, testLogger(), clock.now)
	require.NoError(t, err)
	defer local.Close()
	assert.Equal(t, "sbs_2025-06-02.log", filepath.Base(local.CurrentFile()))

	utc, err := newDailyFile(t.TempDir(), "sbs", true, testLogger(), clock.now)
	require.NoError(t, err)
	defer utc.Close()
	assert.Equal(t, "sbs_2025-06-01.log", filepath.Base(utc.CurrentFile()))
}

// TestDailyFileFiles tests listing plain and compressed files
func TestDailyFileFiles(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	d, err := newDailyFile(dir, "sbs", true, testLogger(), clock.now)
	require.NoError(t, err)
	defer d.Close()

	for _, name := range []string{"sbs_2025-05-01.log", "sbs_2025-05-02.log.gz", "other_2025-05-03.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	files, err := d.Files()
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{"sbs_2025-05-01.log", "sbs_2025-05-02.log.gz", "sbs_2025-06-01.log"}, names)
}

// TestDailyFileCleanup tests removal of files older than the retention
func TestDailyFileCleanup(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{t: time.Now()}
	d, err := newDailyFile(dir, "sbs", true, testLogger(), clock.now)
	require.NoError(t, err)
	defer d.Close()

	old := filepath.Join(dir, "sbs_2023-01-01.log.gz")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0644))
	oldTime := clock.t.AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(old, oldTime, oldTime))

	recent := filepath.Join(dir, "sbs_2023-12-31.log")
	require.NoError(t, os.WriteFile(recent, []byte("recent"), 0644))

	removed, err := d.Cleanup(5)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)
	assert.FileExists(t, d.CurrentFile())

	_, err = d.Cleanup(0)
	assert.Error(t, err)
}
