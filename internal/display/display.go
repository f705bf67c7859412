// Package display drives a 5x5 LED matrix by row scanning.
// The real matrix uses the Linux GPIO character device.
// The fake matrix records row writes for tests.
package display

import "github.com/warthog618/go-gpiocdev/device/rpi"

// Size is the width and height of the matrix.
const Size = 5

// Frame is a full matrix image. Each value is a pixel intensity:
// 0 is off, binary frames use 1 for on, greyscale frames use 1..levels.
type Frame [Size][Size]uint8

// Matrix is the row/column output port of the LED matrix.
type Matrix interface {
	// WriteRow selects row and asserts cols on it, deselecting all other rows.
	WriteRow(row int, cols [Size]bool) error

	// Blank turns every LED off.
	Blank() error

	// Close releases the output lines.
	Close() error
}

// Pin definitions (BCM numbering)
var (
	DefaultRowPins = [Size]int{rpi.GPIO5, rpi.GPIO6, rpi.GPIO13, rpi.GPIO19, rpi.GPIO26}
	DefaultColPins = [Size]int{rpi.GPIO12, rpi.GPIO16, rpi.GPIO20, rpi.GPIO21, rpi.GPIO25}
)
