package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
)

// DailyFile is an io.Writer that switches to a new file when the calendar day
// changes. Closed days are compressed with gzip.
//
// Files are named <prefix>_YYYY-MM-DD.log inside the directory.
type DailyFile struct {
	dir    string
	prefix string
	useUTC bool
	logger *logrus.Logger
	now    func() time.Time

	mutex       sync.Mutex
	currentFile *os.File
	currentDate string
	compressing sync.WaitGroup
}

// NewDailyFile creates the directory and opens the file for today
func NewDailyFile(dir, prefix string, useUTC bool, logger *logrus.Logger) (*DailyFile, error) {
	return newDailyFile(dir, prefix, useUTC, logger, time.Now)
}

func newDailyFile(dir, prefix string, useUTC bool, logger *logrus.Logger, now func() time.Time) (*DailyFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	d := &DailyFile{
		dir:    dir,
		prefix: prefix,
		useUTC: useUTC,
		logger: logger,
		now:    now,
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if err := d.rotate(d.date()); err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	return d, nil
}

func (d *DailyFile) date() string {
	now := d.now()
	if d.useUTC {
		now = now.UTC()
	}
	return now.Format("2006-01-02")
}

func (d *DailyFile) path(date string) string {
	return filepath.Join(d.dir, fmt.Sprintf("%s_%s.log", d.prefix, date))
}

// Write appends p to the file for the current day
func (d *DailyFile) Write(p []byte) (int, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if date := d.date(); date != d.currentDate || d.currentFile == nil {
		if err := d.rotate(date); err != nil {
			return 0, err
		}
	}

	return d.currentFile.Write(p)
}

// rotate must be called with the mutex held
func (d *DailyFile) rotate(date string) error {
	if d.currentFile != nil {
		if err := d.currentFile.Close(); err != nil {
			d.logger.WithError(err).Error("Failed to close output file")
		}
		d.currentFile = nil

		if old := d.currentDate; old != "" && old != date {
			d.logger.WithFields(logrus.Fields{
				"old_date": old,
				"new_date": date,
			}).Info("Rotating output file")

			d.compressing.Add(1)
			go func() {
				defer d.compressing.Done()
				d.compress(old)
			}()
		}
	}

	name := d.path(date)
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", name, err)
	}

	d.currentFile = file
	d.currentDate = date

	d.logger.WithField("file", name).Debug("Opened output file")
	return nil
}

func (d *DailyFile) compress(date string) {
	source := d.path(date)
	target := source + ".gz"

	if err := gzipFile(source, target); err != nil {
		d.logger.WithError(err).WithField("file", source).Error("Failed to compress output file")
		return
	}
	if err := os.Remove(source); err != nil {
		d.logger.WithError(err).WithField("file", source).Error("Failed to remove compressed output file")
		return
	}

	d.logger.WithField("file", target).Info("Output file compressed")
}

func gzipFile(source, target string) error {
	src, err := os.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(dst)
	gz.Name = filepath.Base(source)
	gz.ModTime = time.Now()

	if _, err := io.Copy(gz, src); err != nil {
		dst.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// CurrentFile returns the path of the file being written
func (d *DailyFile) CurrentFile() string {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.currentDate == "" {
		return ""
	}
	return d.path(d.currentDate)
}

// Files lists all output files, compressed ones included
func (d *DailyFile) Files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(d.dir, d.prefix+"_*.log*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list output files: %w", err)
	}
	return files, nil
}

// Cleanup removes output files not modified within maxDays
func (d *DailyFile) Cleanup(maxDays int) (int, error) {
	if maxDays <= 0 {
		return 0, fmt.Errorf("maxDays must be positive")
	}

	files, err := d.Files()
	if err != nil {
		return 0, err
	}

	cutoff := d.now().AddDate(0, 0, -maxDays)
	current := d.CurrentFile()

	removed := 0
	for _, file := range files {
		if file == current {
			continue
		}

		info, err := os.Stat(file)
		if err != nil {
			d.logger.WithError(err).WithField("file", file).Warn("Failed to stat output file")
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(file); err != nil {
			d.logger.WithError(err).WithField("file", file).Error("Failed to remove old output file")
			continue
		}
		removed++
	}

	if removed > 0 {
		d.logger.WithField("count", removed).Info("Removed old output files")
	}
	return removed, nil
}

// Close closes the current file and waits for pending compression
func (d *DailyFile) Close() error {
	d.mutex.Lock()
	var err error
	if d.currentFile != nil {
		err = d.currentFile.Close()
		d.currentFile = nil
	}
	d.mutex.Unlock()

	d.compressing.Wait()
	return err
}
