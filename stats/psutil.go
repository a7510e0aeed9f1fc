package stats

import (
	"math"

	"github.com/estesp/proclog/utils"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	log "github.com/sirupsen/logrus"
)

// PSUtilSampler samples the whole process table through gopsutil. Process
// handles are kept between snapshots so CPU usage covers the time since the
// previous snapshot; a process seen for the first time reports 0.
type PSUtilSampler struct {
	procs    map[int]*utils.Proc
	list     func() ([]*process.Process, error)
	totalMem func() (uint64, error)
	wrapProc func(*process.Process) (*utils.Proc, error)
}

// NewPSUtilSampler creates a sampler over the host process table
func NewPSUtilSampler() *PSUtilSampler {
	return &PSUtilSampler{
		procs:    make(map[int]*utils.Proc),
		list:     utils.Processes,
		totalMem: totalMemory,
		wrapProc: utils.NewProc,
	}
}

func totalMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}

// Snapshot refreshes the process table and returns CPU and memory usage per process
func (s *PSUtilSampler) Snapshot() ([]ProcMetrics, error) {
	list, err := s.list()
	if err != nil {
		return nil, err
	}

	total, err := s.totalMem()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get total memory")
	}

	seen := make(map[int]*utils.Proc, len(list))
	out := make([]ProcMetrics, 0, len(list))
	for _, p := range list {
		pid := int(p.Pid)
		proc, ok := s.procs[pid]
		if !ok || !proc.SameAs(p) {
			proc, err = s.wrapProc(p)
			if err != nil {
				// exited between listing and inspection
				log.Debugf("skipping pid %d: %v", pid, err)
				continue
			}
		}

		metrics, err := query(proc, total)
		if err != nil {
			log.Debugf("skipping pid %d: %v", pid, err)
			continue
		}
		seen[pid] = proc
		out = append(out, metrics)
	}
	s.procs = seen

	return out, nil
}

func query(proc *utils.Proc, totalMem uint64) (ProcMetrics, error) {
	name, err := proc.Name()
	if err != nil {
		return ProcMetrics{}, errors.Wrapf(err, "couldn't get name for proc: %d", proc.PID())
	}

	cpu, err := proc.CPU()
	if err != nil {
		return ProcMetrics{}, errors.Wrapf(err, "couldn't get cpu info for proc: %d", proc.PID())
	}

	rss, err := proc.Mem()
	if err != nil {
		return ProcMetrics{}, errors.Wrapf(err, "couldn't get mem info for proc: %d", proc.PID())
	}

	var memPercent float64
	if totalMem > 0 {
		memPercent = float64(rss) / float64(totalMem) * 100
	}

	return ProcMetrics{
		PID:        proc.PID(),
		Name:       name,
		CPU:        sanitize(cpu),
		MemPercent: sanitize(memPercent),
	}, nil
}

// sanitize maps values that cannot be a usage percentage to 0
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
