// Package logic contains the pure countdown state machine.
// This package has NO external dependencies (no GPIO, timers, MQTT, OS, or time.Sleep).
// Hardware effects are returned as values for the caller to apply.
package logic

import "time"

// Phase is the externally visible mode of the countdown.
type Phase string

const (
	PhaseIdle    Phase = "IDLE"
	PhaseRunning Phase = "RUNNING"
	PhaseAlarm   Phase = "ALARM"
)

// Input is a hardware event delivered to the state machine.
type Input int

const (
	InputButtonA      Input = iota // start/stop
	InputButtonB                   // reset
	InputTick                      // one-second timer expired
	InputToneExpired               // tone duration timer expired
	InputBlinkExpired              // blink cadence timer expired
)

func (i Input) String() string {
	switch i {
	case InputButtonA:
		return "BUTTON_A"
	case InputButtonB:
		return "BUTTON_B"
	case InputTick:
		return "TICK"
	case InputToneExpired:
		return "TONE_EXPIRED"
	case InputBlinkExpired:
		return "BLINK_EXPIRED"
	}
	return "UNKNOWN"
}

// TimerID names one of the machine's one-shot timers.
type TimerID int

const (
	TimerTick TimerID = iota
	TimerTone
	TimerBlink
)

func (t TimerID) String() string {
	switch t {
	case TimerTick:
		return "tick"
	case TimerTone:
		return "tone"
	case TimerBlink:
		return "blink"
	}
	return "unknown"
}

// EventType is a countdown event to be announced.
type EventType string

const (
	EventStarted   EventType = "STARTED"
	EventStopped   EventType = "STOPPED"
	EventReset     EventType = "RESET"
	EventAlarm     EventType = "ALARM"
	EventAlarmDone EventType = "ALARM_DONE"
)

// Event represents a countdown event to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Remaining uint32
	Running   bool
	Phase     Phase
}

// Glyph is what the display should show.
type Glyph struct {
	Blank bool
	Digit uint32
}

// DigitGlyph returns the glyph for n.
func DigitGlyph(n uint32) Glyph { return Glyph{Digit: n} }

// BlankGlyph is the all-off glyph.
var BlankGlyph = Glyph{Blank: true}

// EffectKind selects which fields of an Effect are meaningful.
type EffectKind int

const (
	EffectShow     EffectKind = iota // Glyph
	EffectArm                        // Timer, After
	EffectDisarm                     // Timer
	EffectTone                       // ToneOn
	EffectAnnounce                   // Event
)

// Effect is a hardware action requested by a transition.
type Effect struct {
	Kind   EffectKind
	Glyph  Glyph
	Timer  TimerID
	After  time.Duration
	ToneOn bool
	Event  EventType
}

// Show redraws the display.
func Show(g Glyph) Effect { return Effect{Kind: EffectShow, Glyph: g} }

// Arm starts a one-shot timer.
func Arm(id TimerID, after time.Duration) Effect {
	return Effect{Kind: EffectArm, Timer: id, After: after}
}

// Disarm stops a timer.
func Disarm(id TimerID) Effect { return Effect{Kind: EffectDisarm, Timer: id} }

// SetTone turns the tone on or off.
func SetTone(on bool) Effect { return Effect{Kind: EffectTone, ToneOn: on} }

// Announce publishes an event.
func Announce(t EventType) Effect { return Effect{Kind: EffectAnnounce, Event: t} }

// State is the countdown and alarm state.
type State struct {
	// Remaining seconds. Only decreases while Running, never below 0.
	Remaining uint32
	Running   bool

	// Alarm sequence. BlinkCount is the number of blink toggles so far.
	BlinkCount uint32
	Blinking   bool
	Toning     bool
}

// Phase derives the visible mode. An alarm in progress wins over the
// running flag.
func (s State) Phase() Phase {
	switch {
	case s.Blinking || s.Toning:
		return PhaseAlarm
	case s.Running:
		return PhaseRunning
	}
	return PhaseIdle
}

// Config holds the timing constants of the countdown.
type Config struct {
	Initial       uint32        // value after power-up and reset
	TickInterval  time.Duration // countdown step
	ToneDuration  time.Duration // alarm beep length
	BlinkInterval time.Duration // blink cadence
	BlinkLimit    uint32        // full on/off cycles; 2x toggles

	// CancelAlarmOnReset makes a reset during an alarm also stop the blink
	// sequence and silence the tone.
	CancelAlarmOnReset bool
}

// DefaultConfig returns the standard countdown: 10 s at 1 s steps, a 100 ms
// beep and 10 blinks at 100 ms.
func DefaultConfig() Config {
	return Config{
		Initial:            10,
		TickInterval:       time.Second,
		ToneDuration:       100 * time.Millisecond,
		BlinkInterval:      100 * time.Millisecond,
		BlinkLimit:         10,
		CancelAlarmOnReset: true,
	}
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Started   int
	Stopped   int
	Resets    int
	Alarms    int
	AlarmDone int
}
