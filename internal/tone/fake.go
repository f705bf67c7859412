package tone

// FakeDriver records duty cycle changes for test assertions.
type FakeDriver struct {
	// Duties contains every duty cycle set, in order.
	Duties []float64

	// SetError, if set, will be returned by SetDutyCycle.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a silent FakeDriver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// SetDutyCycle records fraction.
func (f *FakeDriver) SetDutyCycle(fraction float64) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Duties = append(f.Duties, fraction)
	return nil
}

// Audible reports whether the last duty set is above zero.
func (f *FakeDriver) Audible() bool {
	return len(f.Duties) > 0 && f.Duties[len(f.Duties)-1] > 0
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}
