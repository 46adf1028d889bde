package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a read or write addresses a coordinate
	// outside the current extent.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrStructuralUnderflow is returned when a delete would leave the grid
	// without a row or column. The grid is left unchanged.
	ErrStructuralUnderflow = errors.New("structural underflow: grid must keep at least one row and one column")

	// ErrNotRectangular is returned by New when rows differ in length.
	ErrNotRectangular = errors.New("rows have different lengths")

	// ErrEmptyGrid is returned by New for input with no rows or no columns.
	ErrEmptyGrid = errors.New("grid needs at least one row and one column")
)

// BoundsError describes a rejected coordinate. It unwraps to ErrOutOfBounds.
type BoundsError struct {
	Op     string
	Row    int // -1 when the operation only addresses a column
	Col    int // -1 when the operation only addresses a row
	Bounds Bounds
}

func (e *BoundsError) Error() string {
	switch {
	case e.Col < 0:
		return fmt.Sprintf("%s: row %d outside %d rows: %v", e.Op, e.Row, e.Bounds.Rows, ErrOutOfBounds)
	case e.Row < 0:
		return fmt.Sprintf("%s: column %d outside %d columns: %v", e.Op, e.Col, e.Bounds.Cols, ErrOutOfBounds)
	default:
		return fmt.Sprintf("%s: cell (%d, %d) outside %dx%d grid: %v",
			e.Op, e.Row, e.Col, e.Bounds.Rows, e.Bounds.Cols, ErrOutOfBounds)
	}
}

func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}
