// Package input turns pointer and keyboard events, already resolved to cell
// coordinates by the renderer, into calls on the grid, selection and edit
// session. It owns the drag mode and keeps selection and session in step
// with every structural change the store makes.
package input

import (
	"fmt"
	"strings"

	"gridbench/internal/clipboard"
	"gridbench/internal/editor"
	"gridbench/internal/grid"
	"gridbench/internal/log"
	"gridbench/internal/selection"
)

// Mode is the pointer interaction state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
)

func (m Mode) String() string {
	if m == ModeDragging {
		return "dragging"
	}
	return "idle"
}

// HeaderKind says which header strip was hit.
type HeaderKind int

const (
	HeaderRow HeaderKind = iota
	HeaderColumn
)

// Snapshot is everything the renderer needs to draw one frame.
type Snapshot struct {
	Bounds       grid.Bounds
	Selection    grid.Rect
	HasSelection bool
	SingleCell   bool
	Anchor       grid.Cell
	Focus        grid.Cell
	Active       grid.Cell
	Editing      bool
	Draft        string
	Mode         Mode
}

// Controller sequences user input into grid operations.
type Controller struct {
	store   *grid.Store
	sel     selection.Model
	session *editor.Session
	tracker *editor.ChangeTracker

	mode  Mode
	press grid.Cell

	// ReplaceOnType makes printable input on an idle selection start an
	// edit that replaces the cell's value.
	ReplaceOnType bool

	unsubscribe func()
}

// New creates a controller over store and subscribes to its changes.
func New(store *grid.Store) *Controller {
	c := &Controller{
		store:         store,
		tracker:       editor.NewChangeTracker(),
		ReplaceOnType: true,
	}
	c.session = editor.NewSession(store, &c.sel)
	c.unsubscribe = store.Subscribe(c.onChange)
	return c
}

// Close detaches the controller from its store.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *Controller) onChange(ch grid.Change) {
	c.tracker.Observe(ch)
	if !ch.Kind.Structural() {
		return
	}
	c.sel.Remap(ch)
	c.session.Remap(ch)
	c.press = ch.Clamp(c.press)
	log.Debug(log.CatGrid, "structural change", "kind", ch.Kind, "index", ch.Index,
		"rows", ch.New.Rows, "cols", ch.New.Cols)
}

// Store returns the underlying grid.
func (c *Controller) Store() *grid.Store { return c.store }

// Tracker returns the modified-cell tracker.
func (c *Controller) Tracker() *editor.ChangeTracker { return c.tracker }

// Mode returns the pointer mode.
func (c *Controller) Mode() Mode { return c.mode }

// Editing reports whether a cell is being edited.
func (c *Controller) Editing() bool { return c.session.Editing() }

// View returns the current render state.
func (c *Controller) View() Snapshot {
	rect, ok := c.sel.Bounds()
	active, editing := c.session.Cell()
	return Snapshot{
		Bounds:       c.store.Bounds(),
		Selection:    rect,
		HasSelection: ok,
		SingleCell:   c.sel.IsSingleCell(),
		Anchor:       c.sel.Anchor(),
		Focus:        c.sel.Focus(),
		Active:       active,
		Editing:      editing,
		Draft:        c.session.Draft(),
		Mode:         c.mode,
	}
}

// DisplayValue returns the draft for the cell being edited and the
// committed value for every other cell.
func (c *Controller) DisplayValue(r, col int) string {
	if cell, ok := c.session.Cell(); ok && cell.Row == r && cell.Col == col {
		return c.session.Draft()
	}
	v, _ := c.store.Cell(r, col)
	return v
}

// ============================================================================
// Pointer
// ============================================================================

// PointerDown commits any edit and starts a drag selection at (r, c).
func (c *Controller) PointerDown(r, col int) error {
	if !c.store.Bounds().Contains(r, col) {
		return &grid.BoundsError{Op: "pointer down", Row: r, Col: col, Bounds: c.store.Bounds()}
	}
	if cell, ok := c.session.Cell(); ok && cell == (grid.Cell{Row: r, Col: col}) {
		// Clicking inside the cell being edited keeps editing it.
		return nil
	}
	if err := c.session.Blur(); err != nil {
		return err
	}
	c.sel.Start(r, col)
	c.mode = ModeDragging
	c.press = grid.Cell{Row: r, Col: col}
	return nil
}

// PointerEnter extends the selection while dragging.
func (c *Controller) PointerEnter(r, col int) {
	if c.mode != ModeDragging || c.session.Editing() || !c.store.Bounds().Contains(r, col) {
		return
	}
	c.sel.Extend(r, col)
}

// PointerUp ends a drag. Releasing over the cell that was pressed begins
// editing it; overCell is false when the release happened off the grid.
func (c *Controller) PointerUp(r, col int, overCell bool) error {
	if c.mode != ModeDragging {
		return nil
	}
	c.mode = ModeIdle
	if !overCell || c.press != (grid.Cell{Row: r, Col: col}) {
		return nil
	}
	return c.session.Begin(r, col)
}

// HeaderDoubleClick selects a whole row or column.
func (c *Controller) HeaderDoubleClick(kind HeaderKind, i int) error {
	if err := c.session.Blur(); err != nil {
		return err
	}
	c.mode = ModeIdle
	b := c.store.Bounds()
	switch kind {
	case HeaderRow:
		if i < 0 || i >= b.Rows {
			return &grid.BoundsError{Op: "select row", Row: i, Col: -1, Bounds: b}
		}
		c.sel.SelectRow(i, b.Cols)
	case HeaderColumn:
		if i < 0 || i >= b.Cols {
			return &grid.BoundsError{Op: "select column", Row: -1, Col: i, Bounds: b}
		}
		c.sel.SelectColumn(i, b.Rows)
	}
	return nil
}

// ============================================================================
// Keyboard
// ============================================================================

// Type appends text to the draft. On an idle selection it starts a
// replacing edit when ReplaceOnType is set.
func (c *Controller) Type(text string) error {
	if c.session.Editing() {
		c.session.Insert(text)
		return nil
	}
	if !c.ReplaceOnType {
		return nil
	}
	return c.TypeToReplace(text)
}

// TypeToReplace begins editing the selection anchor with text as the
// entire draft.
func (c *Controller) TypeToReplace(text string) error {
	if !c.sel.Active() {
		return nil
	}
	c.mode = ModeIdle
	anchor := c.sel.Anchor()
	if err := c.session.Begin(anchor.Row, anchor.Col); err != nil {
		return err
	}
	c.session.Type(text)
	return nil
}

// Backspace deletes the last rune of the draft.
func (c *Controller) Backspace() {
	c.session.Backspace()
}

// Enter commits an edit, or begins one on the selection when idle.
func (c *Controller) Enter() error {
	if c.session.Editing() {
		return c.session.EnterCommit()
	}
	return c.BeginEdit()
}

// Tab commits and advances to the next cell. It reports false when there
// was no edit to advance, leaving Tab free for the caller.
func (c *Controller) Tab() (bool, error) {
	if !c.session.Editing() {
		return false, nil
	}
	return true, c.session.TabAdvance()
}

// Escape discards the draft, or abandons a drag.
func (c *Controller) Escape() {
	if c.session.Editing() {
		c.session.Cancel()
		return
	}
	c.mode = ModeIdle
}

// Commit writes any draft and ends editing without moving the selection.
// Used when focus leaves the grid.
func (c *Controller) Commit() error {
	c.mode = ModeIdle
	return c.session.Blur()
}

// BeginEdit starts editing the selection anchor, keeping its value.
func (c *Controller) BeginEdit() error {
	if !c.sel.Active() {
		return nil
	}
	c.mode = ModeIdle
	anchor := c.sel.Anchor()
	return c.session.Begin(anchor.Row, anchor.Col)
}

// Move shifts the focus by (dr, dc), clamped to the grid. With extend the
// anchor stays put; otherwise the selection collapses onto the new cell.
// Any edit is committed first.
func (c *Controller) Move(dr, dc int, extend bool) error {
	base := grid.Cell{}
	if c.sel.Active() {
		base = c.sel.Focus()
	}
	return c.MoveTo(base.Row+dr, base.Col+dc, extend)
}

// MoveTo is Move with an absolute target.
func (c *Controller) MoveTo(r, col int, extend bool) error {
	if err := c.session.Blur(); err != nil {
		return err
	}
	b := c.store.Bounds()
	r = min(max(r, 0), b.Rows-1)
	col = min(max(col, 0), b.Cols-1)
	if extend {
		c.sel.Extend(r, col)
	} else {
		c.sel.Start(r, col)
	}
	return nil
}

// ClearCells empties every selected cell. It does nothing while editing.
func (c *Controller) ClearCells() int {
	rect, ok := c.sel.Bounds()
	if !ok || c.session.Editing() {
		return 0
	}
	n := 0
	for r := rect.MinRow; r <= rect.MaxRow; r++ {
		for col := rect.MinCol; col <= rect.MaxCol; col++ {
			if err := c.store.SetCell(r, col, ""); err == nil {
				n++
			}
		}
	}
	return n
}

// ============================================================================
// Structural
// ============================================================================

// InsertRowAt commits any edit, then inserts an empty row at i.
func (c *Controller) InsertRowAt(i int) error {
	return c.structural("insert row", func() error { return c.store.InsertRow(i) })
}

// DeleteRowAt commits any edit, then deletes row i.
func (c *Controller) DeleteRowAt(i int) error {
	return c.structural("delete row", func() error { return c.store.DeleteRow(i) })
}

// InsertColumnAt commits any edit, then inserts an empty column at i.
func (c *Controller) InsertColumnAt(i int) error {
	return c.structural("insert column", func() error { return c.store.InsertColumn(i) })
}

// DeleteColumnAt commits any edit, then deletes column i.
func (c *Controller) DeleteColumnAt(i int) error {
	return c.structural("delete column", func() error { return c.store.DeleteColumn(i) })
}

func (c *Controller) structural(op string, mutate func() error) error {
	if err := c.session.Commit(); err != nil {
		return err
	}
	c.mode = ModeIdle
	if err := mutate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ============================================================================
// Clipboard
// ============================================================================

// CopyText serializes the committed values of the selection.
func (c *Controller) CopyText() (string, bool) {
	rect, ok := c.sel.Bounds()
	if !ok {
		return "", false
	}
	text, err := clipboard.SerializeRegion(c.store, rect)
	if err != nil {
		log.ErrorErr(log.CatClipboard, "serialize selection", err)
		return "", false
	}
	return text, true
}

var draftFlattener = strings.NewReplacer("\t", " ", "\n", " ")

// Paste applies text with its top-left cell at the selection anchor and
// selects the written block. While editing, the text goes into the draft
// instead, with tabs and newlines flattened to spaces. Returns the number of
// cells written to the grid.
func (c *Controller) Paste(text string) int {
	if c.session.Editing() {
		c.session.Insert(draftFlattener.Replace(text))
		return 0
	}
	if !c.sel.Active() {
		return 0
	}
	rows := clipboard.Deserialize(text)
	origin := c.sel.Anchor()
	n := clipboard.ApplyPaste(c.store, origin, rows)

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	b := c.store.Bounds()
	c.sel.Start(origin.Row, origin.Col)
	c.sel.Extend(min(origin.Row+len(rows)-1, b.Rows-1), min(origin.Col+width-1, b.Cols-1))
	log.Debug(log.CatClipboard, "paste applied", "origin", fmt.Sprintf("%d,%d", origin.Row, origin.Col), "cells", n)
	return n
}
