// Package irq models an interrupt controller with one normal priority group.
//
// Interrupt sources latch a pending flag with Raise from any goroutine.
// Run services pending sources one at a time from a single goroutine, so
// handlers of sources in the group never run concurrently with each other
// and need no locks around the state they share.
package irq

import (
	"context"
	"errors"
	"sync/atomic"
)

// Source identifies an interrupt source in the normal priority group.
// Lower values are serviced first when several are pending.
type Source uint8

const (
	Buttons Source = iota
	Tick
	Tone
	Blink

	numSources
)

var sourceNames = [numSources]string{
	Buttons: "BUTTONS",
	Tick:    "TICK",
	Tone:    "TONE",
	Blink:   "BLINK",
}

func (s Source) String() string {
	if s < numSources {
		return sourceNames[s]
	}
	return "UNKNOWN"
}

// ErrMasked is returned by Run when the controller has not been unmasked.
var ErrMasked = errors.New("irq: controller is masked")

// Controller latches pending interrupts and dispatches them.
type Controller struct {
	pending  [numSources]atomic.Bool
	unmasked atomic.Bool
	wake     chan struct{}
}

// NewController creates a masked controller.
func NewController() *Controller {
	return &Controller{wake: make(chan struct{}, 1)}
}

// Raise latches src as pending. It never blocks. A source raised again
// before it is serviced is serviced once.
func (c *Controller) Raise(src Source) {
	c.pending[src].Store(true)
	c.notify()
}

func (c *Controller) notify() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether src is latched.
func (c *Controller) Pending(src Source) bool {
	return c.pending[src].Load()
}

// Unpend clears a latched src without servicing it.
func (c *Controller) Unpend(src Source) {
	c.pending[src].Store(false)
}

// Unmask enables dispatch. Sources latched while masked are delivered.
func (c *Controller) Unmask() {
	c.unmasked.Store(true)
	c.notify()
}

// Masked reports whether dispatch is disabled.
func (c *Controller) Masked() bool {
	return !c.unmasked.Load()
}

// ServicePending calls handle for each pending source, lowest source first,
// until none are pending, and returns the number of handler calls. It does
// nothing while the controller is masked. Callers must not call it
// concurrently with itself or Run.
func (c *Controller) ServicePending(handle func(Source)) int {
	if c.Masked() {
		return 0
	}
	n := 0
	for {
		src, ok := c.next()
		if !ok {
			return n
		}
		handle(src)
		n++
	}
}

func (c *Controller) next() (Source, bool) {
	for s := Source(0); s < numSources; s++ {
		if c.pending[s].Swap(false) {
			return s, true
		}
	}
	return 0, false
}

// Run is the dispatch context. It sleeps until a source is raised and then
// services everything pending, until ctx is done.
func (c *Controller) Run(ctx context.Context, handle func(Source)) error {
	if c.Masked() {
		return ErrMasked
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.wake:
			c.ServicePending(handle)
		}
	}
}
