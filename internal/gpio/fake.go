package gpio

// FakeChannels is a test double whose edges are triggered by Press.
type FakeChannels struct {
	latch latchSet

	// Pins contains the configured pin for each channel.
	Pins []int

	// Edges contains the configured edge for each channel.
	Edges []Edge

	// ConfigureError, if set, will be returned by Configure.
	ConfigureError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeChannels creates a FakeChannels. raise is called on every Press.
func NewFakeChannels(raise func()) *FakeChannels {
	return &FakeChannels{latch: latchSet{raise: raise}}
}

// Configure records the pin and edge.
func (f *FakeChannels) Configure(pin int, edge Edge) (ChannelID, error) {
	if f.ConfigureError != nil {
		return 0, f.ConfigureError
	}
	id, err := f.latch.alloc()
	if err != nil {
		return 0, err
	}
	f.Pins = append(f.Pins, pin)
	f.Edges = append(f.Edges, edge)
	return id, nil
}

// Press simulates the configured edge on channel id.
func (f *FakeChannels) Press(id ChannelID) {
	f.latch.trigger(id)
}

// IsTriggered reports whether the channel's event flag is set.
func (f *FakeChannels) IsTriggered(id ChannelID) bool {
	return f.latch.isTriggered(id)
}

// Clear consumes the channel's event.
func (f *FakeChannels) Clear(id ChannelID) {
	f.latch.clear(id)
}

// Close marks the channels as closed.
func (f *FakeChannels) Close() error {
	f.Closed = true
	return nil
}
