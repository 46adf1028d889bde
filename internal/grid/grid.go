// Package grid holds the rectangular matrix of cell text under edit.
//
// Store is the only writer of cell values. Every successful mutation is
// announced to subscribers synchronously, before the mutating call returns,
// so selection and edit state can be remapped in the same step.
package grid

import "fmt"

// Cell addresses one zero-based (row, col) position.
type Cell struct {
	Row int
	Col int
}

// Bounds is the extent of a grid.
type Bounds struct {
	Rows int
	Cols int
}

// Contains reports whether the cell lies inside the extent.
func (b Bounds) Contains(row, col int) bool {
	return row >= 0 && row < b.Rows && col >= 0 && col < b.Cols
}

// Rect is an inclusive, normalized cell rectangle.
type Rect struct {
	MinRow int
	MaxRow int
	MinCol int
	MaxCol int
}

// RectOf returns the bounding box of two cells in either order.
func RectOf(a, b Cell) Rect {
	return Rect{
		MinRow: min(a.Row, b.Row),
		MaxRow: max(a.Row, b.Row),
		MinCol: min(a.Col, b.Col),
		MaxCol: max(a.Col, b.Col),
	}
}

// Contains reports whether (row, col) lies inside the rectangle.
func (r Rect) Contains(row, col int) bool {
	return row >= r.MinRow && row <= r.MaxRow && col >= r.MinCol && col <= r.MaxCol
}

// Height returns the number of rows spanned.
func (r Rect) Height() int { return r.MaxRow - r.MinRow + 1 }

// Width returns the number of columns spanned.
func (r Rect) Width() int { return r.MaxCol - r.MinCol + 1 }

// TopLeft returns the rectangle's minimum corner.
func (r Rect) TopLeft() Cell { return Cell{Row: r.MinRow, Col: r.MinCol} }

type subscriber struct {
	id int
	fn func(Change)
}

// Store owns the cell matrix. It is not safe for concurrent use; the UI
// loop is its only writer.
type Store struct {
	cells  [][]string
	subs   []subscriber
	nextID int
}

// New creates a store from already rectangular rows. The rows are copied.
func New(rows [][]string) (*Store, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	width := len(rows[0])
	cells := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), width, ErrNotRectangular)
		}
		cells[i] = append([]string(nil), row...)
	}
	return &Store{cells: cells}, nil
}

// NewEmpty creates a rows x cols store of empty strings.
func NewEmpty(rows, cols int) (*Store, error) {
	if rows < 1 || cols < 1 {
		return nil, ErrEmptyGrid
	}
	cells := make([][]string, rows)
	for i := range cells {
		cells[i] = make([]string, cols)
	}
	return &Store{cells: cells}, nil
}

// Rows returns the current row count.
func (s *Store) Rows() int { return len(s.cells) }

// Cols returns the current column count.
func (s *Store) Cols() int { return len(s.cells[0]) }

// Bounds returns the current extent.
func (s *Store) Bounds() Bounds {
	return Bounds{Rows: s.Rows(), Cols: s.Cols()}
}

// Cell returns the committed value at (r, c).
func (s *Store) Cell(r, c int) (string, error) {
	if !s.Bounds().Contains(r, c) {
		return "", &BoundsError{Op: "get cell", Row: r, Col: c, Bounds: s.Bounds()}
	}
	return s.cells[r][c], nil
}

// SetCell replaces the committed value at (r, c). No other cell changes.
func (s *Store) SetCell(r, c int, value string) error {
	b := s.Bounds()
	if !b.Contains(r, c) {
		return &BoundsError{Op: "set cell", Row: r, Col: c, Bounds: b}
	}
	prev := s.cells[r][c]
	s.cells[r][c] = value
	s.notify(Change{Kind: ChangeCellSet, Cell: Cell{Row: r, Col: c}, Prev: prev, Value: value, Old: b, New: b})
	return nil
}

// InsertRow inserts a row of empty cells at index, shifting later rows down.
// index may equal Rows() to append.
func (s *Store) InsertRow(index int) error {
	old := s.Bounds()
	if index < 0 || index > old.Rows {
		return &BoundsError{Op: "insert row", Row: index, Col: -1, Bounds: old}
	}
	row := make([]string, old.Cols)
	s.cells = append(s.cells, nil)
	copy(s.cells[index+1:], s.cells[index:])
	s.cells[index] = row
	s.notify(Change{Kind: ChangeRowInserted, Index: index, Old: old, New: s.Bounds()})
	return nil
}

// DeleteRow removes the row at index. Deleting the only row fails with
// ErrStructuralUnderflow and changes nothing.
func (s *Store) DeleteRow(index int) error {
	old := s.Bounds()
	if index < 0 || index >= old.Rows {
		return &BoundsError{Op: "delete row", Row: index, Col: -1, Bounds: old}
	}
	if old.Rows == 1 {
		return ErrStructuralUnderflow
	}
	s.cells = append(s.cells[:index], s.cells[index+1:]...)
	s.notify(Change{Kind: ChangeRowDeleted, Index: index, Old: old, New: s.Bounds()})
	return nil
}

// InsertColumn inserts an empty cell at index in every row.
// index may equal Cols() to append.
func (s *Store) InsertColumn(index int) error {
	old := s.Bounds()
	if index < 0 || index > old.Cols {
		return &BoundsError{Op: "insert column", Row: -1, Col: index, Bounds: old}
	}
	for i, row := range s.cells {
		row = append(row, "")
		copy(row[index+1:], row[index:])
		row[index] = ""
		s.cells[i] = row
	}
	s.notify(Change{Kind: ChangeColumnInserted, Index: index, Old: old, New: s.Bounds()})
	return nil
}

// DeleteColumn removes the cell at index from every row. Deleting the only
// column fails with ErrStructuralUnderflow and changes nothing.
func (s *Store) DeleteColumn(index int) error {
	old := s.Bounds()
	if index < 0 || index >= old.Cols {
		return &BoundsError{Op: "delete column", Row: -1, Col: index, Bounds: old}
	}
	if old.Cols == 1 {
		return ErrStructuralUnderflow
	}
	for i, row := range s.cells {
		s.cells[i] = append(row[:index], row[index+1:]...)
	}
	s.notify(Change{Kind: ChangeColumnDeleted, Index: index, Old: old, New: s.Bounds()})
	return nil
}

// Snapshot returns a deep copy of the committed cells.
func (s *Store) Snapshot() [][]string {
	out := make([][]string, len(s.cells))
	for i, row := range s.cells {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Region returns a copy of the cells inside rect.
func (s *Store) Region(rect Rect) ([][]string, error) {
	b := s.Bounds()
	if !b.Contains(rect.MinRow, rect.MinCol) {
		return nil, &BoundsError{Op: "region", Row: rect.MinRow, Col: rect.MinCol, Bounds: b}
	}
	if !b.Contains(rect.MaxRow, rect.MaxCol) {
		return nil, &BoundsError{Op: "region", Row: rect.MaxRow, Col: rect.MaxCol, Bounds: b}
	}
	out := make([][]string, 0, rect.Height())
	for r := rect.MinRow; r <= rect.MaxRow; r++ {
		out = append(out, append([]string(nil), s.cells[r][rect.MinCol:rect.MaxCol+1]...))
	}
	return out, nil
}

// Subscribe registers fn to be called after every mutation. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(ch Change) {
	for _, sub := range s.subs {
		sub.fn(ch)
	}
}
