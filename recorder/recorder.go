// Package recorder drives the periodic snapshot and persist cycle.
package recorder

import (
	"time"

	"github.com/estesp/proclog/output"
	"github.com/estesp/proclog/stats"
	perf "github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// State represents the state of a recorder
type State int

// State constants
const (
	// Created represents a recorder not yet run
	Created State = iota
	// Running represents a recorder inside its sampling loop
	Running
	// Completed represents a finished run, successful or not
	Completed
)

// SinkOpener creates (or truncates) the sink at a path
type SinkOpener func(path string) (output.Sink, error)

func openCSV(path string) (output.Sink, error) {
	sink, err := output.Create(path)
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// Summary describes the time spent on ticks during a run
type Summary struct {
	Ticks int
	Rows  int
	Mean  time.Duration
	P95   time.Duration
	Max   time.Duration
}

// Recorder samples the process table every interval and appends one record per
// process to the output sink until the run budget is spent or it is canceled.
// A Recorder runs once; it is not safe for concurrent use.
type Recorder struct {
	config  Config
	sampler stats.Sampler

	openSink SinkOpener
	now      func() time.Time
	sleep    func(time.Duration)

	state     State
	ticks     int
	rows      int
	elapsed   time.Duration
	tickTimes []float64
}

// New creates a recorder for a validated configuration
func New(config Config, sampler stats.Sampler) (*Recorder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		return nil, errors.New("no sampler provided")
	}

	return &Recorder{
		config:   config,
		sampler:  sampler,
		openSink: openCSV,
		now:      time.Now,
		sleep:    time.Sleep,
		state:    Created,
	}, nil
}

// Run creates the output, writes the header and then ticks until the duration
// budget is exhausted or 'cancel' is set. The budget and the flag are checked
// before each tick only, so a tick that has started always completes. The sink
// is closed on every return path.
func (r *Recorder) Run(cancel Canceler) (err error) {
	if r.state != Created {
		return errors.New("recorder has already run")
	}
	r.state = Running
	defer func() {
		r.state = Completed
	}()

	path := r.config.Output
	log.Infof("Creating CSV file: %s", path)
	sink, err := r.openSink(path)
	if err != nil {
		return &LoopError{Op: OpCreate, Path: path, Err: err}
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = &LoopError{Op: OpClose, Path: path, Tick: r.ticks, Err: cerr}
		}
	}()

	if err := sink.WriteHeader(); err != nil {
		return &LoopError{Op: OpHeader, Path: path, Err: err}
	}
	if err := sink.Flush(); err != nil {
		return &LoopError{Op: OpFlush, Path: path, Err: err}
	}
	log.Info("CSV header written successfully")

	var (
		interval = r.config.IntervalDuration()
		budget   = r.config.MaxDuration()
		start    = r.now()
	)
	for r.now().Sub(start) < budget && !cancel.IsSet() {
		if err := r.tick(sink); err != nil {
			r.elapsed = r.now().Sub(start)
			return err
		}
		r.sleep(interval)
	}
	r.elapsed = r.now().Sub(start)

	return nil
}

// tick takes one snapshot and persists it. All rows share one timestamp.
func (r *Recorder) tick(sink output.Sink) error {
	var (
		tick  = r.ticks + 1
		path  = r.config.Output
		begin = r.now()
	)

	procs, err := r.sampler.Snapshot()
	if err != nil {
		return &LoopError{Op: OpSnapshot, Path: path, Tick: tick, Err: err}
	}

	timestamp := r.now()
	for _, p := range procs {
		sample := output.Sample{
			Timestamp:     timestamp,
			PID:           p.PID,
			ProcessName:   p.Name,
			CPUPercent:    p.CPU,
			MemoryPercent: p.MemPercent,
		}
		if err := sink.WriteRow(sample.Fields()); err != nil {
			return &LoopError{Op: OpRow, Path: path, Tick: tick, Err: err}
		}
	}

	if err := sink.Flush(); err != nil {
		return &LoopError{Op: OpFlush, Path: path, Tick: tick, Err: err}
	}

	took := r.now().Sub(begin)
	r.ticks = tick
	r.rows += len(procs)
	r.tickTimes = append(r.tickTimes, float64(took))
	log.Debugf("tick %d: %d processes recorded in %v", tick, len(procs), took)

	return nil
}

// State returns Created, Running, or Completed
func (r *Recorder) State() State {
	return r.state
}

// Ticks returns the number of completed ticks
func (r *Recorder) Ticks() int {
	return r.ticks
}

// Rows returns the number of data rows written by completed ticks
func (r *Recorder) Rows() int {
	return r.rows
}

// Elapsed returns the time spent in the sampling loop
func (r *Recorder) Elapsed() time.Duration {
	return r.elapsed
}

// Summary returns tick timing statistics of the completed ticks
func (r *Recorder) Summary() Summary {
	summary := Summary{Ticks: r.ticks, Rows: r.rows}
	if len(r.tickTimes) == 0 {
		return summary
	}

	data := perf.Float64Data(r.tickTimes)
	if mean, err := perf.Mean(data); err == nil {
		summary.Mean = time.Duration(mean)
	}
	if longest, err := perf.Max(data); err == nil {
		summary.Max = time.Duration(longest)
	}
	// too few samples for a percentile
	summary.P95 = summary.Max
	if p95, err := perf.Percentile(data, 95); err == nil {
		summary.P95 = time.Duration(p95)
	}
	return summary
}
