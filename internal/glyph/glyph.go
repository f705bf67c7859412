// Package glyph maps semantic values to display frames.
package glyph

import "github.com/sweeney/countdown/internal/display"

// Blank is the all-off frame.
var Blank display.Frame

// Parse builds a frame from one string per row. '#' and '1'..'9' light a
// pixel ('#' at intensity 1, digits at their value); anything else is off.
// Missing rows and columns are off.
func Parse(rows ...string) display.Frame {
	var f display.Frame
	for r, row := range rows {
		if r >= display.Size {
			break
		}
		for c, ch := range row {
			if c >= display.Size {
				break
			}
			switch {
			case ch == '#':
				f[r][c] = 1
			case ch >= '1' && ch <= '9':
				f[r][c] = uint8(ch - '0')
			}
		}
	}
	return f
}

var digits = [...]display.Frame{
	Parse(
		".###.",
		".#.#.",
		".#.#.",
		".#.#.",
		".###.",
	),
	Parse(
		"..#..",
		".##..",
		"..#..",
		"..#..",
		".###.",
	),
	Parse(
		".###.",
		"...#.",
		".###.",
		".#...",
		".###.",
	),
	Parse(
		".###.",
		"...#.",
		".###.",
		"...#.",
		".###.",
	),
	Parse(
		".#.#.",
		".#.#.",
		".###.",
		"...#.",
		"...#.",
	),
	Parse(
		".###.",
		".#...",
		".###.",
		"...#.",
		".###.",
	),
	Parse(
		".###.",
		".#...",
		".###.",
		".#.#.",
		".###.",
	),
	Parse(
		".###.",
		"...#.",
		"..#..",
		"..#..",
		"..#..",
	),
	Parse(
		".###.",
		".#.#.",
		".###.",
		".#.#.",
		".###.",
	),
	Parse(
		".###.",
		".#.#.",
		".###.",
		"...#.",
		".###.",
	),
	Parse(
		"#.###",
		"#.#.#",
		"#.#.#",
		"#.#.#",
		"#.###",
	),
}

// MaxDigit is the largest value Digit can draw.
const MaxDigit = uint32(len(digits) - 1)

// Digit returns the frame for n in 0..MaxDigit. Any other value is Blank.
func Digit(n uint32) display.Frame {
	if n > MaxDigit {
		return Blank
	}
	return digits[n]
}

var dice = [...]display.Frame{
	Parse(
		".....",
		".....",
		"..#..",
		".....",
		".....",
	),
	Parse(
		"#....",
		".....",
		".....",
		".....",
		"....#",
	),
	Parse(
		"#....",
		".....",
		"..#..",
		".....",
		"....#",
	),
	Parse(
		"#...#",
		".....",
		".....",
		".....",
		"#...#",
	),
	Parse(
		"#...#",
		".....",
		"..#..",
		".....",
		"#...#",
	),
	Parse(
		"#...#",
		".....",
		"#...#",
		".....",
		"#...#",
	),
}

// Dice returns the die face for n in 1..6. Any other value is Blank.
func Dice(n int) display.Frame {
	if n < 1 || n > len(dice) {
		return Blank
	}
	return dice[n-1]
}
