//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealChannels latches button edges from actual hardware using the Linux GPIO
// character device. The kernel performs the edge detection.
type RealChannels struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
	latch latchSet
}

// NewRealChannels opens chipName. raise is called whenever a configured
// channel triggers.
func NewRealChannels(chipName string, raise func()) (*RealChannels, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("countdown"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealChannels{
		chip:  chip,
		latch: latchSet{raise: raise},
	}, nil
}

// Configure requests pin as an input with pull-up and edge detection.
func (r *RealChannels) Configure(pin int, edge Edge) (ChannelID, error) {
	id, err := r.latch.alloc()
	if err != nil {
		return 0, err
	}

	edgeOpt := gpiocdev.WithFallingEdge
	if edge == EdgeRising {
		edgeOpt = gpiocdev.WithRisingEdge
	}

	line, err := r.chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		edgeOpt,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			r.latch.trigger(id)
		}))
	if err != nil {
		r.latch.n.Add(-1)
		return 0, fmt.Errorf("request pin %d: %w", pin, err)
	}

	r.lines = append(r.lines, line)
	return id, nil
}

// IsTriggered reports whether the channel's event flag is set.
func (r *RealChannels) IsTriggered(id ChannelID) bool {
	return r.latch.isTriggered(id)
}

// Clear consumes the channel's event.
func (r *RealChannels) Clear(id ChannelID) {
	r.latch.clear(id)
}

// Pressed reads the current level of the channel's pin. Buttons are active
// low: raw 0 = pressed.
func (r *RealChannels) Pressed(id ChannelID) (bool, error) {
	if !r.latch.valid(id) {
		return false, fmt.Errorf("channel %d not configured", id)
	}
	v, err := r.lines[id].Value()
	if err != nil {
		return false, fmt.Errorf("read channel %d: %w", id, err)
	}
	return v == 0, nil
}

// Close releases GPIO resources.
// Reconfigures pins to plain inputs with pull-up before closing so the
// buttons do not float while nothing owns them.
func (r *RealChannels) Close() error {
	var errs []error

	for _, l := range r.lines {
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", l.Offset(), err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", l.Offset(), err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}
