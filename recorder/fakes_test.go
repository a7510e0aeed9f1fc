package recorder

import (
	"sync"
	"time"

	"github.com/estesp/proclog/output"
	"github.com/estesp/proclog/stats"
	"github.com/pkg/errors"
)

var (
	errDiskFull  = errors.New("no space left on device")
	errProcTable = errors.New("process table unreadable")
)

// fakeClock only moves when sleep or advance is called
type fakeClock struct {
	mu     sync.Mutex
	cur    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.cur = c.cur.Add(d)
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

// fakeSampler returns its snapshots in turn, repeating the last one
type fakeSampler struct {
	snapshots  [][]stats.ProcMetrics
	calls      int
	failAt     int
	onSnapshot func(call int)
}

func (s *fakeSampler) Snapshot() ([]stats.ProcMetrics, error) {
	s.calls++
	if s.onSnapshot != nil {
		s.onSnapshot(s.calls)
	}
	if s.failAt == s.calls {
		return nil, errProcTable
	}
	if len(s.snapshots) == 0 {
		return nil, nil
	}
	idx := s.calls - 1
	if idx >= len(s.snapshots) {
		idx = len(s.snapshots) - 1
	}
	return s.snapshots[idx], nil
}

// fakeSink counts calls; header and rows both count as writes
type fakeSink struct {
	writes      int
	failWriteAt int
	flushes     int
	failFlushAt int
	closeErr    error

	header  bool
	pending [][]string
	rows    [][]string
	closed  bool
}

func (s *fakeSink) write() error {
	s.writes++
	if s.writes == s.failWriteAt {
		return errDiskFull
	}
	return nil
}

func (s *fakeSink) WriteHeader() error {
	if err := s.write(); err != nil {
		return err
	}
	s.header = true
	return nil
}

func (s *fakeSink) WriteRow(fields []string) error {
	if err := s.write(); err != nil {
		return err
	}
	s.pending = append(s.pending, fields)
	return nil
}

func (s *fakeSink) Flush() error {
	s.flushes++
	if s.flushes == s.failFlushAt {
		return errDiskFull
	}
	s.rows = append(s.rows, s.pending...)
	s.pending = nil
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return s.closeErr
}

func procs(names ...string) []stats.ProcMetrics {
	out := make([]stats.ProcMetrics, 0, len(names))
	for i, name := range names {
		out = append(out, stats.ProcMetrics{
			PID:        100 + i,
			Name:       name,
			CPU:        float64(i) * 1.5,
			MemPercent: 0.25,
		})
	}
	return out
}

// newTestRecorder builds a recorder driven by a fake clock
func newTestRecorder(config Config, sampler stats.Sampler, sink output.Sink) (*Recorder, *fakeClock, error) {
	rec, err := New(config, sampler)
	if err != nil {
		return nil, nil, err
	}
	clock := newFakeClock()
	rec.now = clock.now
	rec.sleep = clock.sleep
	if sink != nil {
		rec.openSink = func(string) (output.Sink, error) {
			return sink, nil
		}
	}
	return rec, clock, nil
}
