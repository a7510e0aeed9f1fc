package recorder

import (
	"time"

	"github.com/pkg/errors"
)

// Default run parameters
const (
	DefaultInterval = 1
	DefaultOutput   = "process_usage.csv"
	DefaultDuration = 60
)

// Config describes one sampling run. Interval and Duration are in seconds;
// CGroup optionally restricts sampling to one control group.
type Config struct {
	Interval int
	Output   string
	Duration int
	CGroup   string
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Interval: DefaultInterval,
		Output:   DefaultOutput,
		Duration: DefaultDuration,
	}
}

// Validate checks the configuration once before a run
func (c Config) Validate() error {
	if c.Interval < 1 {
		return errors.Errorf("interval must be a positive number of seconds, got %d", c.Interval)
	}
	if c.Duration < 0 {
		return errors.Errorf("duration must be a non-negative number of seconds, got %d", c.Duration)
	}
	if c.Output == "" {
		return errors.New("output path must not be empty")
	}
	return nil
}

// IntervalDuration returns the pause between ticks
func (c Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// MaxDuration returns the run budget
func (c Config) MaxDuration() time.Duration {
	return time.Duration(c.Duration) * time.Second
}
