package recorder

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, Config{Interval: 1, Output: "process_usage.csv", Duration: 60}, config)
	assert.NoError(t, config.Validate())
	assert.Equal(t, time.Second, config.IntervalDuration())
	assert.Equal(t, time.Minute, config.MaxDuration())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Interval: 2, Output: "out.csv", Duration: 120}, false},
		{"zero duration", Config{Interval: 1, Output: "out.csv", Duration: 0}, false},
		{"with cgroup", Config{Interval: 1, Output: "out.csv", Duration: 5, CGroup: "/system.slice"}, false},
		{"zero interval", Config{Interval: 0, Output: "out.csv", Duration: 5}, true},
		{"negative interval", Config{Interval: -1, Output: "out.csv", Duration: 5}, true},
		{"negative duration", Config{Interval: 1, Output: "out.csv", Duration: -5}, true},
		{"empty output", Config{Interval: 1, Output: "", Duration: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoopErrorMessage(t *testing.T) {
	cause := errors.New("permission denied")

	err := &LoopError{Op: OpCreate, Path: "/root/out.csv", Err: cause}
	assert.Equal(t, "create /root/out.csv: permission denied", err.Error())

	err = &LoopError{Op: OpRow, Path: "out.csv", Tick: 3, Err: errors.Wrap(cause, "failed to write record")}
	assert.Equal(t, "write row out.csv (tick 3): failed to write record: permission denied", err.Error())
	assert.Equal(t, cause, errors.Cause(err))
}

func TestLoopErrorSetup(t *testing.T) {
	tests := []struct {
		err   LoopError
		setup bool
	}{
		{LoopError{Op: OpCreate}, true},
		{LoopError{Op: OpHeader}, true},
		{LoopError{Op: OpFlush}, true},
		{LoopError{Op: OpFlush, Tick: 2}, false},
		{LoopError{Op: OpSnapshot, Tick: 1}, false},
		{LoopError{Op: OpRow, Tick: 1}, false},
		{LoopError{Op: OpClose}, false},
		{LoopError{Op: OpClose, Tick: 4}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.setup, tt.err.Setup(), "%s at tick %d", tt.err.Op, tt.err.Tick)
	}
}
