// Package output writes process samples as CSV records.
package output

import (
	"bytes"
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// TimestampLayout is RFC 3339 with a fixed nanosecond fraction and a numeric
// zone offset
const TimestampLayout = "2006-01-02T15:04:05.000000000-07:00"

// Header is the fixed column order of every record
var Header = []string{
	"Timestamp",
	"PID",
	"Process Name",
	"CPU Usage (%)",
	"Memory Usage (%)",
}

// Sink is a record writer with explicit flush. All calls are synchronous.
type Sink interface {
	// WriteHeader writes the column names
	WriteHeader() error

	// WriteRow writes one record of len(Header) fields
	WriteRow(fields []string) error

	// Flush pushes buffered records down to durable storage
	Flush() error

	// Close releases the underlying file
	Close() error
}

// Sample is one process observation, formatted into a record by Fields
type Sample struct {
	Timestamp     time.Time
	PID           int
	ProcessName   string
	CPUPercent    float64
	MemoryPercent float64
}

// Fields formats the sample in Header order
func (s Sample) Fields() []string {
	return []string{
		s.Timestamp.Format(TimestampLayout),
		strconv.Itoa(s.PID),
		s.ProcessName,
		FormatPercent(s.CPUPercent),
		FormatPercent(s.MemoryPercent),
	}
}

// FormatPercent renders a percentage with exactly two decimal places
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// CSVSink is a Sink over a file. Records are staged in memory and reach the
// file only on Flush, so the file always ends on a flush boundary.
type CSVSink struct {
	path   string
	file   *os.File
	staged bytes.Buffer
	writer *csv.Writer
	// devices and pipes reject fsync
	sync bool
}

// Create creates or truncates the file at 'path'
func Create(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create CSV file %q", path)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to stat CSV file %q", path)
	}

	s := &CSVSink{
		path: path,
		file: f,
		sync: fi.Mode().IsRegular(),
	}
	s.writer = csv.NewWriter(&s.staged)
	return s, nil
}

// Path returns the file path the sink writes to
func (s *CSVSink) Path() string {
	return s.path
}

// WriteHeader writes the column names
func (s *CSVSink) WriteHeader() error {
	return errors.Wrap(s.writer.Write(Header), "failed to write header")
}

// WriteRow writes a single record
func (s *CSVSink) WriteRow(fields []string) error {
	if len(fields) != len(Header) {
		return errors.Errorf("record has %d fields, expected %d", len(fields), len(Header))
	}
	return errors.Wrap(s.writer.Write(fields), "failed to write record")
}

// Flush writes staged records to the file in a single write and syncs it when
// the file is a regular one
func (s *CSVSink) Flush() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return errors.Wrap(err, "failed to flush writer")
	}
	if s.staged.Len() > 0 {
		_, err := s.file.Write(s.staged.Bytes())
		s.staged.Reset()
		if err != nil {
			return errors.Wrapf(err, "failed to write %q", s.path)
		}
	}
	if !s.sync {
		return nil
	}
	return errors.Wrapf(s.file.Sync(), "failed to sync %q", s.path)
}

// Close closes the file. Records not yet flushed are discarded.
func (s *CSVSink) Close() error {
	return errors.Wrapf(s.file.Close(), "failed to close %q", s.path)
}
