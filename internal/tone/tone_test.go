package tone

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
)

func TestDutyFromFraction(t *testing.T) {
	tests := []struct {
		fraction float64
		want     gpio.Duty
	}{
		{0.5, gpio.DutyHalf},
		{1, gpio.DutyMax},
		{2, gpio.DutyMax},
		{0.25, gpio.DutyMax / 4},
	}
	for _, tt := range tests {
		if got := dutyFromFraction(tt.fraction); got != tt.want {
			t.Errorf("dutyFromFraction(%v): got %v, want %v", tt.fraction, got, tt.want)
		}
	}
}

func TestFakeDriverAudible(t *testing.T) {
	f := NewFakeDriver()
	if f.Audible() {
		t.Error("new driver should be silent")
	}

	f.SetDutyCycle(DutyOn)
	if !f.Audible() {
		t.Error("expected audible after DutyOn")
	}

	f.SetDutyCycle(DutyOff)
	f.SetDutyCycle(DutyOff)
	if f.Audible() {
		t.Error("expected silent after DutyOff")
	}
	if len(f.Duties) != 3 {
		t.Errorf("expected 3 recorded duties, got %d", len(f.Duties))
	}
}

func TestFakeDriverError(t *testing.T) {
	f := NewFakeDriver()
	f.SetError = errors.New("simulated error")

	if err := f.SetDutyCycle(DutyOn); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Duties) != 0 {
		t.Errorf("expected no duties recorded on error, got %d", len(f.Duties))
	}
}
