package editor

import (
	"fmt"
	"unicode/utf8"

	"gridbench/internal/grid"
	"gridbench/internal/log"
	"gridbench/internal/selection"
)

// State is the edit session's mode.
type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// Session is the single active-cell editor for a grid. While Editing, the
// draft is held here and the store keeps the last committed value.
type Session struct {
	store *grid.Store
	sel   *selection.Model

	state State
	cell  grid.Cell
	draft string
}

// NewSession creates an idle session writing into store and keeping sel
// collapsed onto the active cell.
func NewSession(store *grid.Store, sel *selection.Model) *Session {
	return &Session{store: store, sel: sel}
}

// State returns the current mode.
func (s *Session) State() State { return s.state }

// Editing reports whether a cell is being edited.
func (s *Session) Editing() bool { return s.state == Editing }

// Cell returns the active cell, or false when idle.
func (s *Session) Cell() (grid.Cell, bool) {
	return s.cell, s.state == Editing
}

// Draft returns the uncommitted text. It is empty when idle.
func (s *Session) Draft() string { return s.draft }

// Begin starts editing (r, c) with the committed value as the draft.
// An edit in progress on another cell is committed first; Begin on the
// cell already being edited does nothing.
func (s *Session) Begin(r, c int) error {
	target := grid.Cell{Row: r, Col: c}
	if s.state == Editing {
		if s.cell == target {
			return nil
		}
		if err := s.Commit(); err != nil {
			return err
		}
	}
	value, err := s.store.Cell(r, c)
	if err != nil {
		return fmt.Errorf("begin edit: %w", err)
	}
	s.state = Editing
	s.cell = target
	s.draft = value
	s.sel.Start(r, c)
	return nil
}

// Type replaces the whole draft. Ignored when idle.
func (s *Session) Type(text string) {
	if s.state == Editing {
		s.draft = text
	}
}

// Insert appends text to the draft. Ignored when idle.
func (s *Session) Insert(text string) {
	if s.state == Editing {
		s.draft += text
	}
}

// Backspace removes the last rune of the draft. Ignored when idle.
func (s *Session) Backspace() {
	if s.state != Editing || s.draft == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(s.draft)
	s.draft = s.draft[:len(s.draft)-size]
}

// Commit writes the draft to the store and returns to Idle. It is a no-op
// when idle.
func (s *Session) Commit() error {
	if s.state != Editing {
		return nil
	}
	cell, draft := s.cell, s.draft
	s.reset()
	if err := s.store.SetCell(cell.Row, cell.Col, draft); err != nil {
		return fmt.Errorf("commit edit: %w", err)
	}
	return nil
}

// Blur commits because focus left the cell.
func (s *Session) Blur() error {
	return s.Commit()
}

// EnterCommit commits and collapses the selection onto the committed cell.
func (s *Session) EnterCommit() error {
	if s.state != Editing {
		return nil
	}
	cell := s.cell
	if err := s.Commit(); err != nil {
		return err
	}
	s.sel.Start(cell.Row, cell.Col)
	return nil
}

// TabAdvance commits and begins editing the next cell in row-major order,
// wrapping from the last column to the next row and from the last row to
// the first.
func (s *Session) TabAdvance() error {
	if s.state != Editing {
		return nil
	}
	cell := s.cell
	if err := s.Commit(); err != nil {
		return err
	}
	b := s.store.Bounds()
	nextCol := (cell.Col + 1) % b.Cols
	nextRow := cell.Row
	if nextCol == 0 {
		nextRow = (cell.Row + 1) % b.Rows
	}
	return s.Begin(nextRow, nextCol)
}

// Cancel discards the draft and returns to Idle without writing.
func (s *Session) Cancel() {
	s.reset()
}

// Remap follows the active cell through a structural change. It runs after
// the store has mutated, so it cannot write anything back.
//
// Callers must Commit before a structural edit; input.Controller does. A
// draft still open when its row or column is deleted has no cell left to
// land in: it is discarded and a warning is logged with its text.
func (s *Session) Remap(ch grid.Change) {
	if s.state != Editing || !ch.Kind.Structural() {
		return
	}
	cell, ok := ch.Remap(s.cell)
	if !ok {
		log.Warn(log.CatInput, "draft discarded by structural change",
			"kind", ch.Kind, "row", s.cell.Row, "col", s.cell.Col, "draft", s.draft)
		s.reset()
		return
	}
	s.cell = cell
}

func (s *Session) reset() {
	s.state = Idle
	s.cell = grid.Cell{}
	s.draft = ""
}
