package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/countdown/internal/display"
	"github.com/sweeney/countdown/internal/glyph"
)

// lampTest scans each die face at full brightness for step, then blanks the
// matrix. It runs before the board owns the multiplexer.
func lampTest(ctx context.Context, mux *display.Multiplexer, refresh, step time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mux.Run(ctx, refresh)
	})
	g.Go(func() error {
		defer cancel()
		ticker := time.NewTicker(step)
		defer ticker.Stop()

		full := uint8(min(mux.Levels(), 255))
		for n := 1; n <= 6; n++ {
			mux.SetFrame(scale(glyph.Dice(n), full))
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		mux.SetFrame(glyph.Blank)
		return nil
	})
	return g.Wait()
}

func scale(f display.Frame, level uint8) display.Frame {
	for r := range f {
		for c := range f[r] {
			if f[r][c] > 0 {
				f[r][c] = level
			}
		}
	}
	return f
}
