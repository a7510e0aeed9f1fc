package recorder

import (
	"os"
	"os/signal"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Canceler is polled by the recorder before every tick; it must never block
type Canceler interface {
	IsSet() bool
}

// CancelFlag is a write-once cancellation flag, safe for concurrent use
type CancelFlag struct {
	set atomic.Bool
}

// Cancel sets the flag and reports whether this call performed the transition
func (f *CancelFlag) Cancel() bool {
	return f.set.CompareAndSwap(false, true)
}

// IsSet reports whether cancellation was requested
func (f *CancelFlag) IsSet() bool {
	return f.set.Load()
}

// NotifyOnSignal starts a listener that sets 'flag' when the first of 'sigs'
// arrives and then exits. The returned function unregisters the signals.
func NotifyOnSignal(flag *CancelFlag, sigs ...os.Signal) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigChan, sigs...)

	go func() {
		select {
		case sig := <-sigChan:
			log.Infof("Received %s signal, stopping...", sig)
			flag.Cancel()
		case <-done:
		}
	}()

	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			signal.Stop(sigChan)
			close(done)
		}
	}
}
