// Package gpio provides edge-latched button inputs with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev/device/rpi"
)

// ChannelID identifies a configured input channel.
type ChannelID int

// Edge selects the transition that triggers a channel.
type Edge int

const (
	// EdgeFalling triggers on high-to-low, a press on an active-low button.
	EdgeFalling Edge = iota
	// EdgeRising triggers on low-to-high.
	EdgeRising
)

// Channels is a set of edge-triggered inputs. Each channel has one sticky
// flag: an edge sets it and raises the button interrupt, and it stays set
// until cleared. Further edges before the clear are absorbed into the same
// event. There is no software debounce.
type Channels interface {
	// Configure sets up pin to trigger on edge and returns its channel.
	Configure(pin int, edge Edge) (ChannelID, error)

	// IsTriggered reports whether the channel's event flag is set.
	IsTriggered(id ChannelID) bool

	// Clear consumes the channel's event.
	Clear(id ChannelID)

	// Close releases GPIO resources.
	Close() error
}

// MaxChannels is the number of channels a Channels can configure.
const MaxChannels = 8

// ErrNoChannel is returned by Configure when every channel is in use.
var ErrNoChannel = errors.New("gpio: no free channel")

// Pin definitions (BCM numbering)
const (
	DefaultPinA = rpi.GPIO17 // Button A: start/stop
	DefaultPinB = rpi.GPIO27 // Button B: reset
)

// latchSet holds the per-channel event flags. Channels are allocated from
// one goroutine; trigger may be called from any goroutine, including while a
// later channel is still being allocated.
type latchSet struct {
	n     atomic.Int32
	flags [MaxChannels]atomic.Bool
	raise func()
}

func (l *latchSet) alloc() (ChannelID, error) {
	n := l.n.Load()
	if n == MaxChannels {
		return 0, ErrNoChannel
	}
	l.n.Store(n + 1)
	return ChannelID(n), nil
}

func (l *latchSet) valid(id ChannelID) bool {
	return id >= 0 && int32(id) < l.n.Load()
}

func (l *latchSet) trigger(id ChannelID) {
	if !l.valid(id) {
		return
	}
	l.flags[id].Store(true)
	if l.raise != nil {
		l.raise()
	}
}

func (l *latchSet) isTriggered(id ChannelID) bool {
	return l.valid(id) && l.flags[id].Load()
}

func (l *latchSet) clear(id ChannelID) {
	if l.valid(id) {
		l.flags[id].Store(false)
	}
}
