package grid

// ChangeKind identifies the mutation a Change describes.
type ChangeKind int

const (
	ChangeCellSet ChangeKind = iota
	ChangeRowInserted
	ChangeRowDeleted
	ChangeColumnInserted
	ChangeColumnDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCellSet:
		return "cell-set"
	case ChangeRowInserted:
		return "row-inserted"
	case ChangeRowDeleted:
		return "row-deleted"
	case ChangeColumnInserted:
		return "column-inserted"
	case ChangeColumnDeleted:
		return "column-deleted"
	default:
		return "unknown"
	}
}

// Structural reports whether the change moved or removed coordinates.
func (k ChangeKind) Structural() bool {
	return k != ChangeCellSet
}

// Change is the notification emitted after every successful mutation.
// Index is the affected row or column for structural kinds. Cell, Prev and
// Value describe the write for ChangeCellSet.
type Change struct {
	Kind  ChangeKind
	Index int
	Cell  Cell
	Prev  string
	Value string
	Old   Bounds
	New   Bounds
}

// Remap translates a coordinate that was valid before the change into the
// coordinate addressing the same cell afterwards. ok is false when the
// cell's row or column was deleted.
func (c Change) Remap(cell Cell) (Cell, bool) {
	switch c.Kind {
	case ChangeRowInserted:
		if cell.Row >= c.Index {
			cell.Row++
		}
	case ChangeRowDeleted:
		if cell.Row == c.Index {
			return cell, false
		}
		if cell.Row > c.Index {
			cell.Row--
		}
	case ChangeColumnInserted:
		if cell.Col >= c.Index {
			cell.Col++
		}
	case ChangeColumnDeleted:
		if cell.Col == c.Index {
			return cell, false
		}
		if cell.Col > c.Index {
			cell.Col--
		}
	}
	return cell, true
}

// Clamp behaves like Remap but keeps coordinates on a deleted row or column
// by moving them onto the line that took its place (or the new last line).
func (c Change) Clamp(cell Cell) Cell {
	if remapped, ok := c.Remap(cell); ok {
		return remapped
	}
	switch c.Kind {
	case ChangeRowDeleted:
		cell.Row = min(c.Index, c.New.Rows-1)
	case ChangeColumnDeleted:
		cell.Col = min(c.Index, c.New.Cols-1)
	}
	return cell
}
