package timer

import (
	"sync"
	"time"
)

// Real is a OneShot backed by time.AfterFunc.
//
// Every Arm and Disarm starts a new generation. A callback from an older
// generation that was already in flight when the timer was stopped is
// discarded, so a disarmed timer never raises its interrupt.
type Real struct {
	raise func()

	mu      sync.Mutex
	gen     uint64
	t       *time.Timer
	armed   bool
	expired bool
}

// NewReal creates a timer that calls raise each time it expires.
func NewReal(raise func()) *Real {
	return &Real{raise: raise}
}

// Arm starts the timer for d.
func (r *Real) Arm(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	gen := r.gen
	r.armed = true
	r.t = time.AfterFunc(d, func() { r.fire(gen) })
}

// Disarm stops the timer and clears any latched event.
func (r *Real) Disarm() {
	r.mu.Lock()
	r.stopLocked()
	r.mu.Unlock()
}

func (r *Real) stopLocked() {
	if r.t != nil {
		r.t.Stop()
		r.t = nil
	}
	r.gen++
	r.armed = false
	r.expired = false
}

func (r *Real) fire(gen uint64) {
	r.mu.Lock()
	if gen != r.gen || !r.armed {
		r.mu.Unlock()
		return
	}
	r.armed = false
	r.expired = true
	r.t = nil
	r.mu.Unlock()

	if r.raise != nil {
		r.raise()
	}
}

// Expired reports and clears the latched expiry event.
func (r *Real) Expired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.expired
	r.expired = false
	return e
}

// Armed reports whether the timer is counting down.
func (r *Real) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed
}
