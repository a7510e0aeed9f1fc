package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterPIDs(t *testing.T) {
	metrics := []ProcMetrics{
		{PID: 1, Name: "init"},
		{PID: 20, Name: "sshd"},
		{PID: 300, Name: "bash"},
		{PID: 4000, Name: "vim"},
	}

	tests := []struct {
		name     string
		pids     []int
		expected []string
	}{
		{"subset keeps order", []int{4000, 20}, []string{"sshd", "vim"}},
		{"unknown pids ignored", []int{5, 300}, []string{"bash"}},
		{"empty cgroup", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, m := range filterPIDs(metrics, tt.pids) {
				names = append(names, m.Name)
			}
			if len(tt.expected) == 0 {
				assert.Empty(t, names)
				return
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestNewSamplerWithoutCGroup(t *testing.T) {
	sampler, err := NewSampler("")
	require.NoError(t, err)
	assert.IsType(t, &PSUtilSampler{}, sampler)
}

func TestNewSamplerMissingCGroup(t *testing.T) {
	_, err := NewSampler("/proclog-test/does-not-exist")
	assert.Error(t, err)
}
