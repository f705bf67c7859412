// Package tone drives the piezo speaker with a fixed-frequency square wave.
// The real implementation uses periph.io PWM.
// The fake implementation records duty cycle changes for tests.
package tone

// Driver sets the loudness of a tone whose carrier frequency is fixed when the
// driver is created.
type Driver interface {
	// SetDutyCycle sets the fraction of each period the output is high.
	// 0 is silent. Setting the same duty twice is harmless.
	SetDutyCycle(fraction float64) error

	// Close silences the output and releases the pin.
	Close() error
}

// Duty cycles used by the alarm.
const (
	DutyOn  = 0.5
	DutyOff = 0.0
)

// DefaultFrequencyHz is the alarm carrier (A4).
const DefaultFrequencyHz = 440

// DefaultPin is the periph.io name of the speaker pin (hardware PWM0).
const DefaultPin = "GPIO18"
