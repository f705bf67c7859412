package timer

import (
	"sync"
	"time"
)

// Fake is a OneShot that only fires when told to.
type Fake struct {
	raise func()

	mu      sync.Mutex
	armed   bool
	expired bool

	// After is the duration passed to the most recent Arm.
	After time.Duration

	// Arms and Disarms count calls.
	Arms    int
	Disarms int
}

// NewFake creates a fake timer that calls raise when fired.
func NewFake(raise func()) *Fake {
	return &Fake{raise: raise}
}

// Arm records the arming.
func (f *Fake) Arm(d time.Duration) {
	f.mu.Lock()
	f.armed = true
	f.expired = false
	f.After = d
	f.Arms++
	f.mu.Unlock()
}

// Disarm records the disarming and clears any latched event.
func (f *Fake) Disarm() {
	f.mu.Lock()
	f.armed = false
	f.expired = false
	f.Disarms++
	f.mu.Unlock()
}

// Fire expires the timer if it is armed. It reports whether it fired.
func (f *Fake) Fire() bool {
	f.mu.Lock()
	if !f.armed {
		f.mu.Unlock()
		return false
	}
	f.armed = false
	f.expired = true
	f.mu.Unlock()

	if f.raise != nil {
		f.raise()
	}
	return true
}

// Expired reports and clears the latched expiry event.
func (f *Fake) Expired() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.expired
	f.expired = false
	return e
}

// Armed reports whether the timer is armed.
func (f *Fake) Armed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.armed
}
