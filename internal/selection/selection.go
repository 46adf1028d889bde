// Package selection tracks the rectangular cell range the user has picked.
package selection

import "gridbench/internal/grid"

// Model is an anchor/focus pair. The selected range is their bounding box,
// so the order in which the two corners were set does not matter. The zero
// value has no selection.
type Model struct {
	anchor grid.Cell
	focus  grid.Cell
	active bool
}

// Start sets both anchor and focus to (r, c).
func (m *Model) Start(r, c int) {
	m.anchor = grid.Cell{Row: r, Col: c}
	m.focus = m.anchor
	m.active = true
}

// Extend moves the focus to (r, c), keeping the anchor. Without an existing
// selection it behaves like Start.
func (m *Model) Extend(r, c int) {
	if !m.active {
		m.Start(r, c)
		return
	}
	m.focus = grid.Cell{Row: r, Col: c}
}

// SelectRow selects every column of row i.
func (m *Model) SelectRow(i, cols int) {
	m.anchor = grid.Cell{Row: i, Col: 0}
	m.focus = grid.Cell{Row: i, Col: max(cols-1, 0)}
	m.active = true
}

// SelectColumn selects every row of column i.
func (m *Model) SelectColumn(i, rows int) {
	m.anchor = grid.Cell{Row: 0, Col: i}
	m.focus = grid.Cell{Row: max(rows-1, 0), Col: i}
	m.active = true
}

// Clear removes the selection.
func (m *Model) Clear() {
	*m = Model{}
}

// Active reports whether a selection exists.
func (m Model) Active() bool { return m.active }

// Anchor returns the fixed corner.
func (m Model) Anchor() grid.Cell { return m.anchor }

// Focus returns the moving corner.
func (m Model) Focus() grid.Cell { return m.focus }

// Bounds returns the normalized rectangle, or false when nothing is selected.
func (m Model) Bounds() (grid.Rect, bool) {
	if !m.active {
		return grid.Rect{}, false
	}
	return grid.RectOf(m.anchor, m.focus), true
}

// Contains reports whether (r, c) is inside the selection.
func (m Model) Contains(r, c int) bool {
	rect, ok := m.Bounds()
	return ok && rect.Contains(r, c)
}

// IsSingleCell reports whether exactly one cell is selected.
func (m Model) IsSingleCell() bool {
	return m.active && m.anchor == m.focus
}

// Remap keeps the selection on the same cells after a structural change.
// Corners on a deleted row or column are clamped into the new extent.
func (m *Model) Remap(ch grid.Change) {
	if !m.active || !ch.Kind.Structural() {
		return
	}
	m.anchor = clampTo(ch.Clamp(m.anchor), ch.New)
	m.focus = clampTo(ch.Clamp(m.focus), ch.New)
}

func clampTo(c grid.Cell, b grid.Bounds) grid.Cell {
	c.Row = min(max(c.Row, 0), b.Rows-1)
	c.Col = min(max(c.Col, 0), b.Cols-1)
	return c
}
