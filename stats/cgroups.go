//go:build linux
// +build linux

package stats

import (
	"os"
	"path/filepath"

	"github.com/containerd/cgroups"
	cgroupsv2 "github.com/containerd/cgroups/v2"
	"github.com/pkg/errors"
)

const unifiedMountpoint = "/sys/fs/cgroup"

// CGroupsSampler restricts another sampler to the processes inside a control group
type CGroupsSampler struct {
	inner Sampler
	path  string
	pids  func() ([]int, error)
}

// NewCGroupsSampler scopes 'inner' to the existing control group at 'path',
// using the unified hierarchy when the host runs cgroup v2
func NewCGroupsSampler(inner Sampler, path string) (*CGroupsSampler, error) {
	var (
		pids func() ([]int, error)
		err  error
	)
	if cgroups.Mode() == cgroups.Unified {
		pids, err = unifiedPIDs(path)
	} else {
		pids, err = legacyPIDs(path)
	}
	if err != nil {
		return nil, err
	}

	return &CGroupsSampler{inner: inner, path: path, pids: pids}, nil
}

func unifiedPIDs(path string) (func() ([]int, error), error) {
	if _, err := os.Stat(filepath.Join(unifiedMountpoint, path)); err != nil {
		return nil, errors.Wrapf(err, "failed to load cgroup: '%s'", path)
	}
	manager, err := cgroupsv2.LoadManager(unifiedMountpoint, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load cgroup: '%s'", path)
	}

	return func() ([]int, error) {
		procs, err := manager.Procs(true)
		if err != nil {
			return nil, err
		}
		out := make([]int, 0, len(procs))
		for _, pid := range procs {
			out = append(out, int(pid))
		}
		return out, nil
	}, nil
}

func legacyPIDs(path string) (func() ([]int, error), error) {
	control, err := cgroups.Load(reportControllers, cgroups.StaticPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load cgroup: '%s'", path)
	}

	return func() ([]int, error) {
		procs, err := control.Processes(cgroups.Cpuacct, true)
		if err != nil {
			return nil, err
		}
		out := make([]int, 0, len(procs))
		for _, p := range procs {
			out = append(out, p.Pid)
		}
		return out, nil
	}, nil
}

// reportControllers returns the v1 controller used to list member processes
func reportControllers() ([]cgroups.Subsystem, error) {
	v1, err := cgroups.V1()
	if err != nil {
		return nil, err
	}

	var out []cgroups.Subsystem
	for _, sub := range v1 {
		if sub.Name() == cgroups.Cpuacct {
			out = append(out, sub)
		}
	}

	return out, nil
}

// Snapshot returns the inner snapshot limited to members of the control group
func (s *CGroupsSampler) Snapshot() ([]ProcMetrics, error) {
	members, err := s.pids()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list processes of cgroup: '%s'", s.path)
	}

	metrics, err := s.inner.Snapshot()
	if err != nil {
		return nil, err
	}

	return filterPIDs(metrics, members), nil
}
