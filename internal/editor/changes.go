package editor

import (
	"sort"

	"gridbench/internal/grid"
)

// CellEdit records a cell whose committed value differs from the value it
// had when the grid was loaded.
type CellEdit struct {
	Cell     grid.Cell
	OldValue string
	NewValue string
}

// ChangeTracker tracks modified cells and structural edits since load.
// Feed it every store notification via Observe.
type ChangeTracker struct {
	edits      map[grid.Cell]CellEdit
	structural int
}

// NewChangeTracker creates a new empty change tracker.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{edits: make(map[grid.Cell]CellEdit)}
}

// Observe updates the tracker from a store notification.
func (ct *ChangeTracker) Observe(ch grid.Change) {
	if ch.Kind == grid.ChangeCellSet {
		ct.StageEdit(CellEdit{Cell: ch.Cell, OldValue: ch.Prev, NewValue: ch.Value})
		return
	}
	ct.structural++
	moved := make(map[grid.Cell]CellEdit, len(ct.edits))
	for _, e := range ct.edits {
		cell, ok := ch.Remap(e.Cell)
		if !ok {
			continue
		}
		e.Cell = cell
		moved[cell] = e
	}
	ct.edits = moved
}

// StageEdit records a write. A later write to the same cell keeps the
// original OldValue; writing the original value back unstages the cell.
func (ct *ChangeTracker) StageEdit(edit CellEdit) {
	if existing, ok := ct.edits[edit.Cell]; ok {
		edit.OldValue = existing.OldValue
	}
	if edit.NewValue == edit.OldValue {
		delete(ct.edits, edit.Cell)
		return
	}
	ct.edits[edit.Cell] = edit
}

// GetCellEdit returns the staged edit for a cell.
func (ct *ChangeTracker) GetCellEdit(cell grid.Cell) (CellEdit, bool) {
	e, ok := ct.edits[cell]
	return e, ok
}

// IsModified reports whether (r, c) differs from its loaded value.
func (ct *ChangeTracker) IsModified(r, c int) bool {
	_, ok := ct.edits[grid.Cell{Row: r, Col: c}]
	return ok
}

// Edits returns the staged edits in row-major order.
func (ct *ChangeTracker) Edits() []CellEdit {
	out := make([]CellEdit, 0, len(ct.edits))
	for _, e := range ct.edits {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cell.Row != out[j].Cell.Row {
			return out[i].Cell.Row < out[j].Cell.Row
		}
		return out[i].Cell.Col < out[j].Cell.Col
	})
	return out
}

// HasChanges returns whether anything was modified since load.
func (ct *ChangeTracker) HasChanges() bool {
	return len(ct.edits) > 0 || ct.structural > 0
}

// PendingCount returns the number of modified cells.
func (ct *ChangeTracker) PendingCount() int {
	return len(ct.edits)
}

// StructuralCount returns the number of row/column inserts and deletes.
func (ct *ChangeTracker) StructuralCount() int {
	return ct.structural
}

// Clear forgets everything, making the current grid the new baseline.
func (ct *ChangeTracker) Clear() {
	ct.edits = make(map[grid.Cell]CellEdit)
	ct.structural = 0
}
