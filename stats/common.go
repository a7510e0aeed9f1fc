package stats

import (
	"github.com/samber/lo"
)

// ProcMetrics represents one process observed in a snapshot
type ProcMetrics struct {
	PID        int
	Name       string
	CPU        float64
	MemPercent float64
}

// Sampler represents an interface of a process table sampler
type Sampler interface {
	// Snapshot refreshes the process table and returns every process observed,
	// in the order the operating system enumerated them
	Snapshot() ([]ProcMetrics, error)
}

// NewSampler creates a gopsutil process table sampler, scoped to the control
// group at 'cgroupPath' when a path is given (Linux only)
func NewSampler(cgroupPath string) (Sampler, error) {
	base := NewPSUtilSampler()
	if cgroupPath == "" {
		return base, nil
	}

	scoped, err := NewCGroupsSampler(base, cgroupPath)
	if err != nil {
		return nil, err
	}
	return scoped, nil
}

// filterPIDs keeps the metrics whose pid is in 'pids', preserving order
func filterPIDs(metrics []ProcMetrics, pids []int) []ProcMetrics {
	members := lo.Associate(pids, func(pid int) (int, struct{}) {
		return pid, struct{}{}
	})
	return lo.Filter(metrics, func(m ProcMetrics, _ int) bool {
		_, ok := members[m.PID]
		return ok
	})
}
