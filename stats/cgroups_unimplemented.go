//go:build !linux
// +build !linux

package stats

import (
	"github.com/pkg/errors"
)

// CGroupsSampler is a stub outside Linux
type CGroupsSampler struct{}

// NewCGroupsSampler always fails outside Linux
func NewCGroupsSampler(inner Sampler, path string) (*CGroupsSampler, error) {
	return nil, errors.New("cgroup scoping is only supported on linux")
}

// Snapshot always fails outside Linux
func (s *CGroupsSampler) Snapshot() ([]ProcMetrics, error) {
	return nil, errors.New("unimplemented")
}
