// Package board wires the countdown state machine to the hardware.
//
// Every hardware handle is stored once in a Registry before interrupts are
// unmasked. After that the handles are only used from the interrupt
// controller's dispatch goroutine, except the display multiplexer, whose
// refresh runs in its own higher-priority context and shares nothing with the
// handlers but the frame pointer.
package board

import (
	"errors"
	"fmt"

	"github.com/sweeney/countdown/internal/display"
	"github.com/sweeney/countdown/internal/gpio"
	"github.com/sweeney/countdown/internal/irq"
	"github.com/sweeney/countdown/internal/logic"
	"github.com/sweeney/countdown/internal/timer"
	"github.com/sweeney/countdown/internal/tone"
)

const numTimers = 3

// Registry owns the hardware handles.
type Registry struct {
	ctrl *irq.Controller

	display *display.Multiplexer
	tone    tone.Driver
	buttons gpio.Channels
	buttonA gpio.ChannelID
	buttonB gpio.ChannelID
	timers  [numTimers]timer.OneShot

	sealed bool
}

// NewRegistry creates an empty registry for handles raised on ctrl.
func NewRegistry(ctrl *irq.Controller) *Registry {
	return &Registry{ctrl: ctrl}
}

// Controller returns the interrupt controller the handles raise on.
func (r *Registry) Controller() *irq.Controller {
	return r.ctrl
}

func (r *Registry) mustBeOpen(what string, set bool) {
	if r.sealed {
		panic(fmt.Sprintf("board: %s stored after registry was sealed", what))
	}
	if set {
		panic(fmt.Sprintf("board: %s stored twice", what))
	}
}

// SetDisplay stores the display multiplexer.
func (r *Registry) SetDisplay(m *display.Multiplexer) {
	r.mustBeOpen("display", r.display != nil)
	r.display = m
}

// SetTone stores the tone driver.
func (r *Registry) SetTone(d tone.Driver) {
	r.mustBeOpen("tone driver", r.tone != nil)
	r.tone = d
}

// SetButtons stores the button channels and which channel is A and B.
func (r *Registry) SetButtons(ch gpio.Channels, a, b gpio.ChannelID) {
	r.mustBeOpen("buttons", r.buttons != nil)
	r.buttons = ch
	r.buttonA = a
	r.buttonB = b
}

// SetTimer stores the one-shot timer for id.
func (r *Registry) SetTimer(id logic.TimerID, t timer.OneShot) {
	r.mustBeOpen(id.String()+" timer", r.timers[id] != nil)
	r.timers[id] = t
}

// Seal checks that every handle is present and freezes the registry.
func (r *Registry) Seal() error {
	if r.sealed {
		return nil
	}

	var missing []error
	if r.ctrl == nil {
		missing = append(missing, errors.New("interrupt controller"))
	}
	if r.display == nil {
		missing = append(missing, errors.New("display"))
	}
	if r.tone == nil {
		missing = append(missing, errors.New("tone driver"))
	}
	if r.buttons == nil {
		missing = append(missing, errors.New("buttons"))
	}
	for id, t := range r.timers {
		if t == nil {
			missing = append(missing, fmt.Errorf("%s timer", logic.TimerID(id)))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("registry incomplete: %w", errors.Join(missing...))
	}

	r.sealed = true
	return nil
}

// Sealed reports whether Seal has succeeded.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// TimerSource returns the interrupt source raised by timer id.
func TimerSource(id logic.TimerID) irq.Source {
	switch id {
	case logic.TimerTick:
		return irq.Tick
	case logic.TimerTone:
		return irq.Tone
	case logic.TimerBlink:
		return irq.Blink
	}
	panic(fmt.Sprintf("board: no interrupt source for timer %d", id))
}
