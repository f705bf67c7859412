package logic

import "time"

// AlarmGlyph is shown on the "on" half of each blink.
var AlarmGlyph = DigitGlyph(0)

// Step is the transition function of the countdown. It returns the next state
// and the effects to apply, in order.
func Step(cfg Config, s State, in Input) (State, []Effect) {
	switch in {
	case InputButtonA:
		return toggle(cfg, s)
	case InputButtonB:
		return reset(cfg, s)
	case InputTick:
		return tick(cfg, s)
	case InputToneExpired:
		return toneExpired(s)
	case InputBlinkExpired:
		return blink(cfg, s)
	}
	return s, nil
}

func toggle(cfg Config, s State) (State, []Effect) {
	s.Running = !s.Running
	if !s.Running {
		return s, []Effect{Disarm(TimerTick), Announce(EventStopped)}
	}
	// Nothing to count down from 0; the flag still flips.
	if s.Remaining == 0 {
		return s, []Effect{Disarm(TimerTick), Announce(EventStarted)}
	}
	return s, []Effect{Arm(TimerTick, cfg.TickInterval), Announce(EventStarted)}
}

func reset(cfg Config, s State) (State, []Effect) {
	s.Remaining = cfg.Initial
	s.Running = false

	effects := []Effect{Disarm(TimerTick)}
	if cfg.CancelAlarmOnReset {
		if s.Blinking {
			effects = append(effects, Disarm(TimerBlink))
			s.Blinking = false
			s.BlinkCount = 0
		}
		if s.Toning {
			effects = append(effects, SetTone(false), Disarm(TimerTone))
			s.Toning = false
		}
	}
	return s, append(effects, Show(DigitGlyph(s.Remaining)), Announce(EventReset))
}

func tick(cfg Config, s State) (State, []Effect) {
	if !s.Running || s.Remaining == 0 {
		return s, nil
	}

	s.Remaining--
	effects := []Effect{Show(DigitGlyph(s.Remaining))}
	if s.Remaining > 0 {
		return s, append(effects, Arm(TimerTick, cfg.TickInterval))
	}

	s.Running = false
	s.Toning = true
	effects = append(effects,
		Disarm(TimerTick),
		SetTone(true),
		Arm(TimerTone, cfg.ToneDuration),
	)
	if cfg.BlinkLimit > 0 {
		s.Blinking = true
		s.BlinkCount = 0
		effects = append(effects, Arm(TimerBlink, cfg.BlinkInterval))
	}
	return s, append(effects, Announce(EventAlarm))
}

func toneExpired(s State) (State, []Effect) {
	// Silencing is idempotent; a late expiry after a reset is harmless.
	s.Toning = false
	return s, []Effect{SetTone(false), Disarm(TimerTone)}
}

func blink(cfg Config, s State) (State, []Effect) {
	if !s.Blinking {
		return s, nil
	}

	s.BlinkCount++
	g := AlarmGlyph
	if s.BlinkCount%2 == 0 {
		g = BlankGlyph
	}
	effects := []Effect{Show(g)}

	if s.BlinkCount >= 2*cfg.BlinkLimit {
		s.Blinking = false
		s.BlinkCount = 0
		return s, append(effects, Disarm(TimerBlink), Announce(EventAlarmDone))
	}
	return s, append(effects, Arm(TimerBlink, cfg.BlinkInterval))
}

// Machine holds the countdown state between inputs.
type Machine struct {
	cfg         Config
	state       State
	eventCounts EventCounts
}

// NewMachine creates an idle machine showing cfg.Initial.
func NewMachine(cfg Config) *Machine {
	return &Machine{
		cfg:   cfg,
		state: State{Remaining: cfg.Initial},
	}
}

// Start returns the effects that bring the hardware to the power-up state.
func (m *Machine) Start() []Effect {
	return []Effect{Show(DigitGlyph(m.state.Remaining))}
}

// Process applies one input and returns the effects to apply.
func (m *Machine) Process(in Input) []Effect {
	next, effects := Step(m.cfg, m.state, in)
	m.state = next

	for _, e := range effects {
		if e.Kind != EffectAnnounce {
			continue
		}
		switch e.Event {
		case EventStarted:
			m.eventCounts.Started++
		case EventStopped:
			m.eventCounts.Stopped++
		case EventReset:
			m.eventCounts.Resets++
		case EventAlarm:
			m.eventCounts.Alarms++
		case EventAlarmDone:
			m.eventCounts.AlarmDone++
		}
	}
	return effects
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Config returns the machine's configuration.
func (m *Machine) Config() Config {
	return m.cfg
}

// EventCountsSnapshot returns the event counts since startup.
func (m *Machine) EventCountsSnapshot() EventCounts {
	return m.eventCounts
}

// Event builds a publishable event of type t from the current state.
func (m *Machine) Event(t EventType, now time.Time) Event {
	return Event{
		Timestamp: now,
		Type:      t,
		Remaining: m.state.Remaining,
		Running:   m.state.Running,
		Phase:     m.state.Phase(),
	}
}
