// Package timer provides one-shot timers that behave like hardware timer
// peripherals: arming starts a countdown, expiry latches a compare event and
// raises the timer's interrupt, and disarming cancels both.
package timer

import "time"

// OneShot is a one-shot timer. It fires at most once per Arm.
type OneShot interface {
	// Arm starts the timer. Arming an armed timer restarts it and drops any
	// event latched by the previous arming.
	Arm(d time.Duration)

	// Disarm stops the timer and clears any latched event.
	Disarm()

	// Expired reports whether the timer fired since the last Arm, and
	// clears the latched event.
	Expired() bool

	// Armed reports whether the timer is counting down.
	Armed() bool
}
