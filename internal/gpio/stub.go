//go:build !linux

package gpio

import "errors"

// RealChannels is not available on non-Linux platforms.
type RealChannels struct{}

// NewRealChannels returns an error on non-Linux platforms.
func NewRealChannels(chipName string, raise func()) (*RealChannels, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Configure is not implemented on non-Linux platforms.
func (r *RealChannels) Configure(pin int, edge Edge) (ChannelID, error) {
	return 0, errors.New("gpio: not supported")
}

// IsTriggered is not implemented on non-Linux platforms.
func (r *RealChannels) IsTriggered(id ChannelID) bool {
	return false
}

// Clear is not implemented on non-Linux platforms.
func (r *RealChannels) Clear(id ChannelID) {}

// Pressed is not implemented on non-Linux platforms.
func (r *RealChannels) Pressed(id ChannelID) (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealChannels) Close() error {
	return nil
}
