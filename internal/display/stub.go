//go:build !linux

package display

import "errors"

// RealMatrix is not available on non-Linux platforms.
type RealMatrix struct{}

// NewRealMatrix returns an error on non-Linux platforms.
func NewRealMatrix(chipName string, rowPins, colPins [Size]int) (*RealMatrix, error) {
	return nil, errors.New("display: not supported on this platform (requires Linux)")
}

// WriteRow is not implemented on non-Linux platforms.
func (m *RealMatrix) WriteRow(row int, cols [Size]bool) error {
	return errors.New("display: not supported")
}

// Blank is not implemented on non-Linux platforms.
func (m *RealMatrix) Blank() error {
	return errors.New("display: not supported")
}

// Close is not implemented on non-Linux platforms.
func (m *RealMatrix) Close() error {
	return nil
}
