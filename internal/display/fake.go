package display

import "sync"

// FakeMatrix records row writes for test assertions.
type FakeMatrix struct {
	mu sync.Mutex

	// Writes contains every row write in order.
	Writes []RowWrite

	// Blanks counts calls to Blank.
	Blanks int

	// WriteError, if set, will be returned by WriteRow.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// RowWrite is a single WriteRow call.
type RowWrite struct {
	Row  int
	Cols [Size]bool
}

// NewFakeMatrix creates a FakeMatrix.
func NewFakeMatrix() *FakeMatrix {
	return &FakeMatrix{}
}

// WriteRow records the write.
func (f *FakeMatrix) WriteRow(row int, cols [Size]bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, RowWrite{Row: row, Cols: cols})
	return nil
}

// Blank records the call.
func (f *FakeMatrix) Blank() error {
	f.mu.Lock()
	f.Blanks++
	f.mu.Unlock()
	return nil
}

// Close marks the matrix as closed.
func (f *FakeMatrix) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Image rebuilds the image seen by an observer from the last n writes,
// as persistence of vision would.
func (f *FakeMatrix) Image(n int) Frame {
	f.mu.Lock()
	defer f.mu.Unlock()

	var img Frame
	start := len(f.Writes) - n
	if start < 0 {
		start = 0
	}
	for _, w := range f.Writes[start:] {
		for c, on := range w.Cols {
			if on && img[w.Row][c] < 255 {
				img[w.Row][c]++
			}
		}
	}
	return img
}

// Reset clears recorded writes.
func (f *FakeMatrix) Reset() {
	f.mu.Lock()
	f.Writes = nil
	f.Blanks = 0
	f.WriteError = nil
	f.Closed = false
	f.mu.Unlock()
}
