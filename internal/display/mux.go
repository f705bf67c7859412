package display

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Multiplexer shows a Frame on a Matrix one row at a time.
//
// OnRefreshTick is called from a single refresh context at a fixed short
// interval. SetFrame may be called from any other context; the only state
// shared between the two is the frame pointer.
type Multiplexer struct {
	matrix Matrix
	levels int
	log    *zap.Logger

	next atomic.Pointer[Frame]

	// Owned by the refresh context.
	frame Frame
	row   int
	slice int

	writeErrors atomic.Uint64
}

// NewMultiplexer creates a multiplexer for m. levels is the number of duty
// slices each row is held for; 1 gives a binary display.
func NewMultiplexer(m Matrix, levels int, log *zap.Logger) *Multiplexer {
	if levels < 1 {
		levels = 1
	}
	mux := &Multiplexer{
		matrix: m,
		levels: levels,
		log:    log,
	}
	mux.next.Store(&Frame{})
	return mux
}

// Levels returns the greyscale depth.
func (m *Multiplexer) Levels() int {
	return m.levels
}

// SetFrame replaces the frame to be scanned. The new frame is latched at the
// start of the next scan pass, so a pass never mixes two frames.
func (m *Multiplexer) SetFrame(f Frame) {
	m.next.Store(&f)
}

// Current returns the most recently set frame, which the scan latches at the
// next frame boundary.
func (m *Multiplexer) Current() Frame {
	return *m.next.Load()
}

// WriteErrors returns the number of row writes that failed.
func (m *Multiplexer) WriteErrors() uint64 {
	return m.writeErrors.Load()
}

// OnRefreshTick asserts the active row for the active duty slice and then
// advances. A pixel is lit during a slice if its intensity exceeds the slice
// index. A failed write only costs one slice of light and is not retried.
func (m *Multiplexer) OnRefreshTick() {
	if m.row == 0 && m.slice == 0 {
		m.frame = *m.next.Load()
	}

	var cols [Size]bool
	for c := range cols {
		cols[c] = int(m.frame[m.row][c]) > m.slice
	}
	if err := m.matrix.WriteRow(m.row, cols); err != nil {
		if m.writeErrors.Add(1) == 1 {
			m.log.Warn("display row write failed", zap.Int("row", m.row), zap.Error(err))
		}
	}

	m.slice++
	if m.slice == m.levels {
		m.slice = 0
		m.row = (m.row + 1) % Size
	}
}

// Run is the refresh context. It calls OnRefreshTick every interval until ctx
// is done, then blanks the matrix.
func (m *Multiplexer) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("display: refresh interval must be positive, got %v", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := m.matrix.Blank(); err != nil {
				m.log.Warn("display blank failed", zap.Error(err))
			}
			return nil
		case <-ticker.C:
			m.OnRefreshTick()
		}
	}
}
