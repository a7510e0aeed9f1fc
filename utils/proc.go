package utils

import (
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// Proc wraps a gopsutil process handle. The handle remembers the CPU times seen
// by the previous CPU call, so a Proc should be kept between samples.
type Proc struct {
	proc       *process.Process
	createTime int64
}

// NewProc wraps an already enumerated process
func NewProc(p *process.Process) (*Proc, error) {
	created, err := p.CreateTime()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get create time for pid %d", p.Pid)
	}

	return &Proc{proc: p, createTime: created}, nil
}

// Processes lists every process currently in the process table
func Processes() ([]*process.Process, error) {
	list, err := process.Processes()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get process list")
	}
	return list, nil
}

// PID returns process id
func (p *Proc) PID() int {
	return int(p.proc.Pid)
}

// CreateTime returns the process start time in milliseconds since the epoch
func (p *Proc) CreateTime() int64 {
	return p.createTime
}

// SameAs reports whether other refers to the same process instance, i.e. the
// pid was not recycled by a newer process
func (p *Proc) SameAs(other *process.Process) bool {
	if int32(p.PID()) != other.Pid {
		return false
	}
	created, err := other.CreateTime()
	if err != nil {
		return false
	}
	return created == p.createTime
}

// Name returns the process name
func (p *Proc) Name() (string, error) {
	return p.proc.Name()
}

// Mem returns resident memory usage in bytes
func (p *Proc) Mem() (uint64, error) {
	stat, err := p.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}

	return stat.RSS, nil
}

// CPU returns how many percents of the CPU a process uses between this and previous call
func (p *Proc) CPU() (float64, error) {
	return p.proc.Percent(0)
}
