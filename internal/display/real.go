//go:build linux

package display

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealMatrix drives the LED matrix through the Linux GPIO character device.
// Rows are active high, columns are active low (column sinks current).
type RealMatrix struct {
	chip *gpiocdev.Chip
	rows *gpiocdev.Lines
	cols *gpiocdev.Lines

	rowValues []int
	colValues []int
}

// NewRealMatrix requests the row and column lines on chip as outputs with
// every LED off.
func NewRealMatrix(chipName string, rowPins, colPins [Size]int) (*RealMatrix, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("countdown"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	rows, err := chip.RequestLines(rowPins[:], gpiocdev.AsOutput(0, 0, 0, 0, 0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request row pins %v: %w", rowPins, err)
	}

	cols, err := chip.RequestLines(colPins[:], gpiocdev.AsOutput(1, 1, 1, 1, 1))
	if err != nil {
		rows.Close()
		chip.Close()
		return nil, fmt.Errorf("request column pins %v: %w", colPins, err)
	}

	return &RealMatrix{
		chip:      chip,
		rows:      rows,
		cols:      cols,
		rowValues: make([]int, Size),
		colValues: make([]int, Size),
	}, nil
}

// WriteRow deselects all rows, sets the column sinks for row and then selects
// it, so the previous row's columns never light the new row.
func (m *RealMatrix) WriteRow(row int, cols [Size]bool) error {
	for i := range m.rowValues {
		m.rowValues[i] = 0
	}
	if err := m.rows.SetValues(m.rowValues); err != nil {
		return fmt.Errorf("deselect rows: %w", err)
	}

	for i, on := range cols {
		// Active low: 0 sinks current and lights the LED.
		if on {
			m.colValues[i] = 0
		} else {
			m.colValues[i] = 1
		}
	}
	if err := m.cols.SetValues(m.colValues); err != nil {
		return fmt.Errorf("set columns: %w", err)
	}

	m.rowValues[row] = 1
	if err := m.rows.SetValues(m.rowValues); err != nil {
		return fmt.Errorf("select row %d: %w", row, err)
	}
	return nil
}

// Blank turns every LED off.
func (m *RealMatrix) Blank() error {
	for i := range m.rowValues {
		m.rowValues[i] = 0
		m.colValues[i] = 1
	}
	return errors.Join(m.rows.SetValues(m.rowValues), m.cols.SetValues(m.colValues))
}

// Close blanks the matrix, returns the lines to inputs and releases them.
func (m *RealMatrix) Close() error {
	var errs []error

	if err := m.Blank(); err != nil {
		errs = append(errs, fmt.Errorf("blank: %w", err))
	}
	for _, l := range []*gpiocdev.Lines{m.rows, m.cols} {
		if l == nil {
			continue
		}
		if err := l.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure lines %v: %w", l.Offsets(), err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close lines %v: %w", l.Offsets(), err))
		}
	}
	if m.chip != nil {
		if err := m.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}
