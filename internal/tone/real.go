package tone

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// RealDriver produces the tone with hardware PWM through periph.io.
type RealDriver struct {
	pin  gpio.PinIO
	freq physic.Frequency
}

// NewRealDriver initialises the periph host drivers and claims pinName for
// a tone at freqHz. The pin starts silent.
func NewRealDriver(pinName string, freqHz int) (*RealDriver, error) {
	if freqHz <= 0 {
		return nil, fmt.Errorf("invalid tone frequency %d Hz", freqHz)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("speaker pin %q not found", pinName)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("speaker pin %s: %w", pinName, err)
	}

	return &RealDriver{
		pin:  pin,
		freq: physic.Frequency(freqHz) * physic.Hertz,
	}, nil
}

// SetDutyCycle starts the carrier at fraction duty, or drives the pin low
// for 0.
func (d *RealDriver) SetDutyCycle(fraction float64) error {
	if fraction <= 0 {
		if err := d.pin.Out(gpio.Low); err != nil {
			return fmt.Errorf("silence %s: %w", d.pin, err)
		}
		return nil
	}
	if err := d.pin.PWM(dutyFromFraction(fraction), d.freq); err != nil {
		return fmt.Errorf("pwm %s at %s: %w", d.pin, d.freq, err)
	}
	return nil
}

// Close silences the output and halts the pin.
func (d *RealDriver) Close() error {
	return errors.Join(d.SetDutyCycle(DutyOff), d.pin.Halt())
}

func dutyFromFraction(fraction float64) gpio.Duty {
	if fraction >= 1 {
		return gpio.DutyMax
	}
	return gpio.Duty(fraction * float64(gpio.DutyMax))
}
