package recorder

import "fmt"

// Op names the sink or sampler operation a LoopError comes from
type Op string

// Operations that abort a run
const (
	OpCreate   Op = "create"
	OpHeader   Op = "write header"
	OpSnapshot Op = "snapshot"
	OpRow      Op = "write row"
	OpFlush    Op = "flush"
	OpClose    Op = "close"
)

// LoopError is returned when a run is aborted by an I/O or snapshot failure.
// Tick is 0 for failures before the first tick.
type LoopError struct {
	Op   Op
	Path string
	Tick int
	Err  error
}

func (e *LoopError) Error() string {
	if e.Tick > 0 {
		return fmt.Sprintf("%s %s (tick %d): %v", e.Op, e.Path, e.Tick, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Setup reports whether the run failed while preparing the output, before any
// process was sampled
func (e *LoopError) Setup() bool {
	switch e.Op {
	case OpCreate, OpHeader:
		return true
	case OpFlush:
		return e.Tick == 0
	}
	return false
}

// Unwrap returns the underlying failure
func (e *LoopError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying failure for github.com/pkg/errors.Cause
func (e *LoopError) Cause() error {
	return e.Err
}
