package board

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/countdown/internal/display"
	"github.com/sweeney/countdown/internal/glyph"
	"github.com/sweeney/countdown/internal/irq"
	"github.com/sweeney/countdown/internal/logic"
	"github.com/sweeney/countdown/internal/tone"
)

// EventQueueSize is the number of announced events buffered for the
// publisher before new ones are dropped.
const EventQueueSize = 32

// Snapshot is a point-in-time view of the countdown, safe to read from any
// goroutine.
type Snapshot struct {
	State         logic.State
	Counts        logic.EventCounts
	Frame         display.Frame
	ToneErrors    uint64
	DisplayErrors uint64
	Dropped       uint64
}

// Board applies state machine effects to the registered hardware.
type Board struct {
	reg        *Registry
	machine    *logic.Machine
	log        *zap.Logger
	now        func() time.Time
	brightness uint8

	events chan logic.Event
	snap   atomic.Pointer[Snapshot]

	// Owned by the dispatch context.
	toneErrors uint64
	dropped    uint64
}

// Option configures a Board.
type Option func(*Board)

// WithClock sets the clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithBrightness sets the intensity lit pixels are drawn at, clamped to the
// display's greyscale depth. Zero or less selects full brightness.
func WithBrightness(level int) Option {
	return func(b *Board) {
		b.brightness = uint8(min(max(level, 0), 255))
	}
}

// New seals reg and draws the power-up frame. Interrupts stay masked until
// Unmask or Run.
func New(reg *Registry, cfg logic.Config, log *zap.Logger, opts ...Option) (*Board, error) {
	if err := reg.Seal(); err != nil {
		return nil, err
	}

	b := &Board{
		reg:     reg,
		machine: logic.NewMachine(cfg),
		log:     log,
		now:     time.Now,
		events:  make(chan logic.Event, EventQueueSize),
	}
	for _, o := range opts {
		o(b)
	}
	if full := min(reg.display.Levels(), 255); b.brightness == 0 || int(b.brightness) > full {
		b.brightness = uint8(full)
	}

	b.apply(b.machine.Start())
	b.publishSnapshot()
	return b, nil
}

// Events returns the queue of announced countdown events.
func (b *Board) Events() <-chan logic.Event {
	return b.events
}

// Snapshot returns the state after the most recent handler.
func (b *Board) Snapshot() Snapshot {
	s := *b.snap.Load()
	s.DisplayErrors = b.reg.display.WriteErrors()
	return s
}

// Unmask enables interrupt dispatch.
func (b *Board) Unmask() {
	b.reg.ctrl.Unmask()
}

// ServicePending runs the handlers of every pending source on the calling
// goroutine. It must not be used together with Run.
func (b *Board) ServicePending() int {
	return b.reg.ctrl.ServicePending(b.handle)
}

// Run unmasks interrupts and runs the dispatch and display refresh contexts
// until ctx is done.
func (b *Board) Run(ctx context.Context, refresh time.Duration) error {
	b.Unmask()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.reg.display.Run(ctx, refresh)
	})
	g.Go(func() error {
		return b.reg.ctrl.Run(ctx, b.handle)
	})
	err := g.Wait()

	// Leave the speaker quiet on the way out.
	if terr := b.reg.tone.SetDutyCycle(tone.DutyOff); terr != nil {
		err = errors.Join(err, terr)
	}
	return err
}

func (b *Board) handle(src irq.Source) {
	if !b.reg.sealed {
		panic("board: interrupt handled before registry was sealed")
	}

	switch src {
	case irq.Buttons:
		b.handleButtons()
	case irq.Tick:
		b.handleTimer(logic.TimerTick, logic.InputTick)
	case irq.Tone:
		b.handleTimer(logic.TimerTone, logic.InputToneExpired)
	case irq.Blink:
		b.handleTimer(logic.TimerBlink, logic.InputBlinkExpired)
	}
}

// handleButtons consumes each latched button event before acting on it, so
// an edge arriving while the handler runs raises a fresh event.
func (b *Board) handleButtons() {
	buttons := b.reg.buttons
	if buttons.IsTriggered(b.reg.buttonA) {
		buttons.Clear(b.reg.buttonA)
		b.dispatch(logic.InputButtonA)
	}
	if buttons.IsTriggered(b.reg.buttonB) {
		buttons.Clear(b.reg.buttonB)
		b.dispatch(logic.InputButtonB)
	}
}

func (b *Board) handleTimer(id logic.TimerID, in logic.Input) {
	// A timer disarmed after it latched has already cleared its event.
	if !b.reg.timers[id].Expired() {
		return
	}
	b.dispatch(in)
}

func (b *Board) dispatch(in logic.Input) {
	effects := b.machine.Process(in)
	if ce := b.log.Check(zap.DebugLevel, "input"); ce != nil {
		s := b.machine.State()
		ce.Write(
			zap.Stringer("input", in),
			zap.Uint32("remaining", s.Remaining),
			zap.Bool("running", s.Running),
			zap.String("phase", string(s.Phase())),
			zap.Int("effects", len(effects)),
		)
	}
	b.apply(effects)
	b.publishSnapshot()
}

func (b *Board) apply(effects []logic.Effect) {
	for _, e := range effects {
		switch e.Kind {
		case logic.EffectShow:
			b.reg.display.SetFrame(b.frameFor(e.Glyph))

		case logic.EffectArm:
			b.reg.timers[e.Timer].Arm(e.After)

		case logic.EffectDisarm:
			b.reg.timers[e.Timer].Disarm()
			b.reg.ctrl.Unpend(TimerSource(e.Timer))

		case logic.EffectTone:
			duty := tone.DutyOff
			if e.ToneOn {
				duty = tone.DutyOn
			}
			if err := b.reg.tone.SetDutyCycle(duty); err != nil {
				// A missed tone toggle is only audible, not a state error.
				b.toneErrors++
				b.log.Warn("tone duty change failed", zap.Float64("duty", duty), zap.Error(err))
			}

		case logic.EffectAnnounce:
			ev := b.machine.Event(e.Event, b.now())
			select {
			case b.events <- ev:
			default:
				b.dropped++
				b.log.Warn("event queue full, dropping event", zap.String("event", string(ev.Type)))
			}
		}
	}
}

func (b *Board) frameFor(g logic.Glyph) display.Frame {
	f := glyph.Blank
	if !g.Blank {
		f = glyph.Digit(g.Digit)
	}
	for r := range f {
		for c := range f[r] {
			if f[r][c] > 0 {
				f[r][c] = b.brightness
			}
		}
	}
	return f
}

func (b *Board) publishSnapshot() {
	b.snap.Store(&Snapshot{
		State:      b.machine.State(),
		Counts:     b.machine.EventCountsSnapshot(),
		Frame:      b.reg.display.Current(),
		ToneErrors: b.toneErrors,
		Dropped:    b.dropped,
	})
}
