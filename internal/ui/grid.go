package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/xuri/excelize/v2"

	"gridbench/internal/clipboard"
	"gridbench/internal/grid"
	"gridbench/internal/input"
	"gridbench/internal/keys"
	"gridbench/internal/log"
)

const (
	doubleClickWindow = 400 * time.Millisecond
	wheelStep         = 3
	editCursor        = "█"
)

// CellZoneID is the bubblezone ID of the cell at (r, c).
func CellZoneID(r, c int) string { return fmt.Sprintf("cell-%d-%d", r, c) }
func rowZoneID(r int) string     { return fmt.Sprintf("row-header-%d", r) }
func colZoneID(c int) string     { return fmt.Sprintf("col-header-%d", c) }

// columnName returns the spreadsheet label for a zero-based column: A, B, ... AA.
func columnName(c int) string {
	name, err := excelize.ColumnNumberToName(c + 1)
	if err != nil {
		return strconv.Itoa(c + 1)
	}
	return name
}

// cellName returns the spreadsheet reference for a zero-based cell, e.g. B3.
func cellName(r, c int) string {
	name, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", r+1, c+1)
	}
	return name
}

type clipboardReadMsg struct {
	text string
	err  error
}

type clipboardWrittenMsg struct {
	cells int
	err   error
}

type hitKind int

const (
	hitCell hitKind = iota
	hitRowHeader
	hitColHeader
)

type hit struct {
	kind     hitKind
	row, col int
}

type headerClick struct {
	kind  input.HeaderKind
	index int
	at    time.Time
}

// gridLayout is the visible window of the grid for the current size and
// scroll offsets.
type gridLayout struct {
	rowHeaderW int
	rows       []int
	cols       []int
	widths     []int
}

// GridModel renders the grid and turns mouse and keyboard input into
// controller calls. It resolves screen positions to cells with bubblezone
// and never touches grid state directly.
type GridModel struct {
	ctrl        *input.Controller
	clip        clipboard.Clipboard
	keys        keys.KeyMap
	focused     bool
	width       int
	height      int
	rowOffset   int
	colOffset   int
	minColWidth int
	maxColWidth int
	lastHeader  *headerClick
	now         func() time.Time
}

// NewGridModel creates a grid view over ctrl.
func NewGridModel(ctrl *input.Controller, clip clipboard.Clipboard) GridModel {
	return GridModel{
		ctrl:        ctrl,
		clip:        clip,
		keys:        keys.DefaultKeyMap(),
		minColWidth: 6,
		maxColWidth: 40,
		now:         time.Now,
	}
}

// SetFocused sets focus state.
func (m *GridModel) SetFocused(f bool) {
	m.focused = f
}

// Focused returns focus state.
func (m GridModel) Focused() bool {
	return m.focused
}

// SetSize sets the grid pane dimensions, border included.
func (m *GridModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.ensureCursorVisible()
}

// SetColumnWidths bounds the width of every column.
func (m *GridModel) SetColumnWidths(minW, maxW int) {
	if minW < 1 {
		minW = 1
	}
	if maxW < minW {
		maxW = minW
	}
	m.minColWidth = minW
	m.maxColWidth = maxW
}

// Controller returns the controller the grid drives.
func (m GridModel) Controller() *input.Controller {
	return m.ctrl
}

// Position summarizes the selection for the status bar, e.g. "B3" or
// "A1:C4 (4x3)".
func (m GridModel) Position() string {
	v := m.ctrl.View()
	if v.Editing {
		return cellName(v.Active.Row, v.Active.Col) + " editing"
	}
	if !v.HasSelection {
		return fmt.Sprintf("%dx%d", v.Bounds.Rows, v.Bounds.Cols)
	}
	if v.SingleCell {
		return cellName(v.Focus.Row, v.Focus.Col)
	}
	r := v.Selection
	return fmt.Sprintf("%s:%s (%dx%d)", cellName(r.MinRow, r.MinCol), cellName(r.MaxRow, r.MaxCol),
		r.Height(), r.Width())
}

// Init satisfies tea.Model.
func (m GridModel) Init() tea.Cmd {
	return nil
}

// Update handles keys when focused and clipboard results always. Mouse
// input goes through HandleMouse.
func (m GridModel) Update(msg tea.Msg) (GridModel, tea.Cmd) {
	switch msg := msg.(type) {
	case clipboardReadMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatClipboard, "paste failed", msg.err)
			return m, statusCmd("Paste failed: "+msg.err.Error(), MsgError)
		}
		return m, m.paste(clipboard.Normalize(msg.text))

	case clipboardWrittenMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatClipboard, "copy failed", msg.err)
			return m, statusCmd("Copy failed: "+msg.err.Error(), MsgError)
		}
		return m, statusCmd(fmt.Sprintf("Copied %d cells", msg.cells), MsgSuccess)

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		cmd := m.handleKey(msg)
		m.ensureCursorVisible()
		return m, cmd
	}
	return m, nil
}

func (m *GridModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Paste {
		return m.paste(clipboard.Normalize(string(msg.Runes)))
	}

	v := m.ctrl.View()
	var err error
	switch {
	case key.Matches(msg, m.keys.Copy):
		return m.copy()
	case key.Matches(msg, m.keys.Paste):
		return m.readClipboard()
	case key.Matches(msg, m.keys.Menu):
		if !v.HasSelection {
			return nil
		}
		target := MenuTarget{Row: v.Focus.Row, Col: v.Focus.Col, HasRow: true, HasCol: true}
		return func() tea.Msg { return OpenMenuMsg{Target: target} }

	case key.Matches(msg, m.keys.Escape):
		m.ctrl.Escape()
	case key.Matches(msg, m.keys.Enter):
		err = m.ctrl.Enter()
	case key.Matches(msg, m.keys.Edit):
		if !v.Editing {
			err = m.ctrl.BeginEdit()
		}
	case key.Matches(msg, m.keys.Tab):
		_, err = m.ctrl.Tab()
	case key.Matches(msg, m.keys.Backspace):
		if v.Editing {
			m.ctrl.Backspace()
		} else {
			err = m.ctrl.TypeToReplace("")
		}
	case key.Matches(msg, m.keys.Clear):
		if n := m.ctrl.ClearCells(); n > 0 {
			return statusCmd(fmt.Sprintf("Cleared %d cells", n), MsgInfo)
		}

	case key.Matches(msg, m.keys.Up):
		err = m.ctrl.Move(-1, 0, false)
	case key.Matches(msg, m.keys.Down):
		err = m.ctrl.Move(1, 0, false)
	case key.Matches(msg, m.keys.Left):
		err = m.ctrl.Move(0, -1, false)
	case key.Matches(msg, m.keys.Right):
		err = m.ctrl.Move(0, 1, false)
	case key.Matches(msg, m.keys.ExtendUp):
		err = m.ctrl.Move(-1, 0, true)
	case key.Matches(msg, m.keys.ExtendDown):
		err = m.ctrl.Move(1, 0, true)
	case key.Matches(msg, m.keys.ExtendLeft):
		err = m.ctrl.Move(0, -1, true)
	case key.Matches(msg, m.keys.ExtendRight):
		err = m.ctrl.Move(0, 1, true)
	case key.Matches(msg, m.keys.Home):
		err = m.ctrl.MoveTo(v.Focus.Row, 0, false)
	case key.Matches(msg, m.keys.End):
		err = m.ctrl.MoveTo(v.Focus.Row, v.Bounds.Cols-1, false)
	case key.Matches(msg, m.keys.Top):
		err = m.ctrl.MoveTo(0, 0, false)
	case key.Matches(msg, m.keys.Bottom):
		err = m.ctrl.MoveTo(v.Bounds.Rows-1, v.Bounds.Cols-1, false)
	case key.Matches(msg, m.keys.PageUp):
		err = m.ctrl.Move(-m.visibleRowCount(), 0, false)
	case key.Matches(msg, m.keys.PageDown):
		err = m.ctrl.Move(m.visibleRowCount(), 0, false)
	case key.Matches(msg, m.keys.SelectAll):
		if err = m.ctrl.MoveTo(0, 0, false); err == nil {
			err = m.ctrl.MoveTo(v.Bounds.Rows-1, v.Bounds.Cols-1, true)
		}

	default:
		switch msg.Type {
		case tea.KeySpace:
			err = m.ctrl.Type(" ")
		case tea.KeyRunes:
			err = m.ctrl.Type(string(msg.Runes))
		}
	}
	return m.report(err)
}

// HandleMouse resolves a mouse event against the rendered zones. It
// reports whether the event landed on the grid.
func (m GridModel) HandleMouse(msg tea.MouseMsg) (GridModel, tea.Cmd, bool) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scrollRows(-wheelStep)
		return m, nil, false
	case msg.Button == tea.MouseButtonWheelDown:
		m.scrollRows(wheelStep)
		return m, nil, false

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		h, ok := m.hitTest(msg)
		if !ok {
			return m, nil, false
		}
		if h.kind == hitCell {
			m.lastHeader = nil
			return m, m.report(m.ctrl.PointerDown(h.row, h.col)), true
		}
		return m, m.headerPress(h), true

	case msg.Action == tea.MouseActionMotion:
		if m.ctrl.Mode() != input.ModeDragging {
			return m, nil, false
		}
		if h, ok := m.hitTest(msg); ok && h.kind == hitCell {
			m.ctrl.PointerEnter(h.row, h.col)
			m.ensureVisible(grid.Cell{Row: h.row, Col: h.col})
		}
		return m, nil, true

	case msg.Action == tea.MouseActionRelease:
		if m.ctrl.Mode() != input.ModeDragging {
			return m, nil, false
		}
		h, ok := m.hitTest(msg)
		over := ok && h.kind == hitCell
		return m, m.report(m.ctrl.PointerUp(h.row, h.col, over)), true

	case msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionPress:
		h, ok := m.hitTest(msg)
		if !ok {
			return m, nil, false
		}
		var target MenuTarget
		switch h.kind {
		case hitCell:
			if v := m.ctrl.View(); !v.HasSelection || !v.Selection.Contains(h.row, h.col) {
				if err := m.ctrl.MoveTo(h.row, h.col, false); err != nil {
					return m, m.report(err), true
				}
			}
			target = MenuTarget{Row: h.row, Col: h.col, HasRow: true, HasCol: true}
		case hitRowHeader:
			target = MenuTarget{Row: h.row, HasRow: true}
		case hitColHeader:
			target = MenuTarget{Col: h.col, HasCol: true}
		}
		return m, func() tea.Msg { return OpenMenuMsg{Target: target} }, true
	}
	return m, nil, false
}

func (m *GridModel) headerPress(h hit) tea.Cmd {
	kind, index := input.HeaderRow, h.row
	if h.kind == hitColHeader {
		kind, index = input.HeaderColumn, h.col
	}
	now := m.now()
	last := m.lastHeader
	if last != nil && last.kind == kind && last.index == index && now.Sub(last.at) <= doubleClickWindow {
		m.lastHeader = nil
		return m.report(m.ctrl.HeaderDoubleClick(kind, index))
	}
	m.lastHeader = &headerClick{kind: kind, index: index, at: now}
	return nil
}

func (m GridModel) hitTest(msg tea.MouseMsg) (hit, bool) {
	l := m.layout()
	for _, r := range l.rows {
		for _, c := range l.cols {
			if z := zone.Get(CellZoneID(r, c)); z != nil && z.InBounds(msg) {
				return hit{kind: hitCell, row: r, col: c}, true
			}
		}
		if z := zone.Get(rowZoneID(r)); z != nil && z.InBounds(msg) {
			return hit{kind: hitRowHeader, row: r}, true
		}
	}
	for _, c := range l.cols {
		if z := zone.Get(colZoneID(c)); z != nil && z.InBounds(msg) {
			return hit{kind: hitColHeader, col: c}, true
		}
	}
	return hit{}, false
}

// ApplyMenuAction performs a structural edit chosen from the menu.
func (m GridModel) ApplyMenuAction(msg MenuActionMsg) (GridModel, tea.Cmd) {
	t := msg.Target
	var err error
	switch msg.Action {
	case ActionInsertRowAbove:
		err = m.ctrl.InsertRowAt(t.Row)
	case ActionInsertRowBelow:
		err = m.ctrl.InsertRowAt(t.Row + 1)
	case ActionDeleteRow:
		err = m.ctrl.DeleteRowAt(t.Row)
	case ActionInsertColumnBefore:
		err = m.ctrl.InsertColumnAt(t.Col)
	case ActionInsertColumnAfter:
		err = m.ctrl.InsertColumnAt(t.Col + 1)
	case ActionDeleteColumn:
		err = m.ctrl.DeleteColumnAt(t.Col)
	}
	m.clampOffsets()
	m.ensureCursorVisible()
	if errors.Is(err, grid.ErrStructuralUnderflow) {
		return m, statusCmd("The grid must keep at least one row and one column", MsgInfo)
	}
	if err != nil {
		return m, m.report(err)
	}
	return m, statusCmd(msg.Action.String(), MsgSuccess)
}

func (m *GridModel) copy() tea.Cmd {
	text, ok := m.ctrl.CopyText()
	if !ok {
		return statusCmd("Nothing selected", MsgInfo)
	}
	cells := m.ctrl.View().Selection
	n := cells.Height() * cells.Width()
	clip := m.clip
	return func() tea.Msg {
		return clipboardWrittenMsg{cells: n, err: clip.WriteText(text)}
	}
}

func (m *GridModel) readClipboard() tea.Cmd {
	clip := m.clip
	return func() tea.Msg {
		text, err := clip.ReadText()
		return clipboardReadMsg{text: text, err: err}
	}
}

func (m *GridModel) paste(text string) tea.Cmd {
	editing := m.ctrl.Editing()
	n := m.ctrl.Paste(text)
	m.ensureCursorVisible()
	if editing {
		return nil
	}
	if n == 0 {
		return statusCmd("Nothing pasted", MsgInfo)
	}
	return statusCmd(fmt.Sprintf("Pasted %d cells", n), MsgSuccess)
}

func (m GridModel) report(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	log.ErrorErr(log.CatInput, "grid operation failed", err)
	return statusCmd(err.Error(), MsgError)
}

// ============================================================================
// Scrolling
// ============================================================================

func (m *GridModel) scrollRows(delta int) {
	m.rowOffset += delta
	m.clampOffsets()
}

func (m *GridModel) clampOffsets() {
	b := m.ctrl.Store().Bounds()
	m.rowOffset = min(max(m.rowOffset, 0), b.Rows-1)
	m.colOffset = min(max(m.colOffset, 0), b.Cols-1)
}

// ensureCursorVisible scrolls the active cell, or the selection focus,
// into view.
func (m *GridModel) ensureCursorVisible() {
	if m.ctrl == nil {
		return
	}
	v := m.ctrl.View()
	switch {
	case v.Editing:
		m.ensureVisible(v.Active)
	case v.HasSelection:
		m.ensureVisible(v.Focus)
	default:
		m.clampOffsets()
	}
}

func (m *GridModel) ensureVisible(c grid.Cell) {
	m.clampOffsets()
	visRows := m.visibleRowCount()
	if c.Row < m.rowOffset {
		m.rowOffset = c.Row
	} else if c.Row >= m.rowOffset+visRows {
		m.rowOffset = c.Row - visRows + 1
	}

	if c.Col < m.colOffset {
		m.colOffset = c.Col
	}
	for m.colOffset < c.Col && !containsInt(m.layout().cols, c.Col) {
		m.colOffset++
	}
}

func (m GridModel) innerSize() (int, int) {
	w := m.width - 2
	if w < 10 {
		w = 10
	}
	h := m.height - 2
	if h < 4 {
		h = 4
	}
	return w, h
}

func (m GridModel) visibleRowCount() int {
	// header + separator + scroll indicator
	_, h := m.innerSize()
	n := h - 3
	if n < 1 {
		n = 1
	}
	return n
}

func (m GridModel) layout() gridLayout {
	b := m.ctrl.Store().Bounds()
	l := gridLayout{rowHeaderW: max(len(strconv.Itoa(b.Rows)), 3)}

	end := min(m.rowOffset+m.visibleRowCount(), b.Rows)
	for r := m.rowOffset; r < end; r++ {
		l.rows = append(l.rows, r)
	}

	innerW, _ := m.innerSize()
	avail := innerW - l.rowHeaderW - 3
	used := 0
	for c := m.colOffset; c < b.Cols; c++ {
		w := min(m.columnWidth(c, l.rows), max(avail, 1))
		needed := w
		if len(l.cols) > 0 {
			needed += 3 // " | " separator
		}
		if used+needed > avail && len(l.cols) > 0 {
			break
		}
		l.cols = append(l.cols, c)
		l.widths = append(l.widths, w)
		used += needed
	}
	return l
}

// columnWidth sizes a column to its widest visible value.
func (m GridModel) columnWidth(c int, rows []int) int {
	w := ansi.StringWidth(columnName(c))
	for _, r := range rows {
		w = max(w, ansi.StringWidth(sanitizeCell(m.ctrl.DisplayValue(r, c))))
	}
	if v := m.ctrl.View(); v.Editing && v.Active.Col == c {
		w = max(w, ansi.StringWidth(sanitizeCell(v.Draft))+1)
	}
	return min(max(w, m.minColWidth), m.maxColWidth)
}

// ============================================================================
// Rendering
// ============================================================================

// View renders the grid pane.
func (m GridModel) View() string {
	borderStyle := UnfocusedBorder
	if m.focused {
		borderStyle = FocusedBorder
	}
	innerW, innerH := m.innerSize()
	content := m.renderTable()
	return borderStyle.Width(innerW).Height(innerH).MaxHeight(innerH + 2).Render(content)
}

func (m GridModel) renderTable() string {
	l := m.layout()
	v := m.ctrl.View()
	tracker := m.ctrl.Tracker()

	var b strings.Builder

	// Header
	headerParts := make([]string, 0, len(l.cols))
	for i, c := range l.cols {
		style := HeaderStyle
		if v.HasSelection && c >= v.Selection.MinCol && c <= v.Selection.MaxCol {
			style = HeaderActiveStyle
		}
		label := style.Width(l.widths[i]).Align(lipgloss.Center).Render(columnName(c))
		headerParts = append(headerParts, zone.Mark(colZoneID(c), label))
	}
	b.WriteString(strings.Repeat(" ", l.rowHeaderW))
	b.WriteString(DimText.Render(" │ "))
	b.WriteString(strings.Join(headerParts, DimText.Render(" | ")))
	b.WriteString("\n")

	// Separator
	sepParts := make([]string, 0, len(l.cols)+1)
	sepParts = append(sepParts, strings.Repeat("─", l.rowHeaderW))
	for _, w := range l.widths {
		sepParts = append(sepParts, strings.Repeat("─", w))
	}
	b.WriteString(DimText.Render(strings.Join(sepParts, "─┼─")))

	// Data rows
	for _, r := range l.rows {
		b.WriteString("\n")
		rowStyle := HeaderStyle
		if v.HasSelection && r >= v.Selection.MinRow && r <= v.Selection.MaxRow {
			rowStyle = HeaderActiveStyle
		}
		label := rowStyle.Width(l.rowHeaderW).Align(lipgloss.Right).Render(strconv.Itoa(r + 1))
		b.WriteString(zone.Mark(rowZoneID(r), label))
		b.WriteString(DimText.Render(" │ "))

		rowParts := make([]string, 0, len(l.cols))
		for i, c := range l.cols {
			colW := l.widths[i]
			var text string
			var style lipgloss.Style
			switch {
			case v.Editing && v.Active.Row == r && v.Active.Col == c:
				text = tail(sanitizeCell(v.Draft)+editCursor, colW)
				style = CellEditing
			case v.HasSelection && v.Focus.Row == r && v.Focus.Col == c:
				text = truncate(sanitizeCell(m.ctrl.DisplayValue(r, c)), colW)
				style = CellFocus
			case v.HasSelection && v.Selection.Contains(r, c):
				text = truncate(sanitizeCell(m.ctrl.DisplayValue(r, c)), colW)
				style = CellSelected
			case tracker.IsModified(r, c):
				text = truncate(sanitizeCell(m.ctrl.DisplayValue(r, c)), colW)
				style = ModifiedText
			default:
				text = truncate(sanitizeCell(m.ctrl.DisplayValue(r, c)), colW)
				style = CellNormal
			}
			rowParts = append(rowParts, zone.Mark(CellZoneID(r, c), style.Width(colW).Render(text)))
		}
		b.WriteString(strings.Join(rowParts, DimText.Render(" | ")))
	}

	// Scroll indicator
	var info []string
	if len(l.rows) < v.Bounds.Rows {
		info = append(info, fmt.Sprintf("rows %d-%d of %d", l.rows[0]+1, l.rows[len(l.rows)-1]+1, v.Bounds.Rows))
	}
	if len(l.cols) < v.Bounds.Cols {
		info = append(info, fmt.Sprintf("cols %s-%s of %d",
			columnName(l.cols[0]), columnName(l.cols[len(l.cols)-1]), v.Bounds.Cols))
	}
	if len(info) > 0 {
		b.WriteString("\n" + DimText.Render(" ["+strings.Join(info, ", ")+"]"))
	}
	return b.String()
}

func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "↵")
	s = strings.ReplaceAll(s, "\n", "↵")
	s = strings.ReplaceAll(s, "\r", "↵")
	s = strings.ReplaceAll(s, "\t", " ")
	return s
}

func truncate(s string, maxLen int) string {
	return ansi.Truncate(s, maxLen, "…")
}

// tail keeps the end of s so the edit cursor stays visible.
func tail(s string, maxLen int) string {
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && ansi.StringWidth(string(runes))+1 > maxLen {
		runes = runes[1:]
	}
	return "…" + string(runes)
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
