package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MessageType represents the type of status message.
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgSuccess
	MsgError
)

// StatusMsg asks the root model to show a transient status message.
type StatusMsg struct {
	Text string
	Type MessageType
}

func statusCmd(text string, t MessageType) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text, Type: t} }
}

// Focus identifies what the status bar should give hints for.
type Focus int

const (
	FocusGrid Focus = iota
	FocusAsk
	FocusMenu
)

// StatusBarModel is the context-aware status bar at the bottom.
type StatusBarModel struct {
	message     string
	messageType MessageType
	messageTime time.Time
	modified    int
	structural  int
	focus       Focus
	editing     bool
	dragging    bool
	position    string
	width       int
}

// NewStatusBarModel creates a new status bar.
func NewStatusBarModel() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth sets the status bar width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// SetMessage sets a status message.
func (m *StatusBarModel) SetMessage(msg string, t MessageType) {
	m.message = msg
	m.messageType = t
	m.messageTime = time.Now()
}

// Message returns the current message, if any.
func (m StatusBarModel) Message() (string, MessageType) {
	return m.message, m.messageType
}

// SetModified updates the modified-cell and structural change counts.
func (m *StatusBarModel) SetModified(cells, structural int) {
	m.modified = cells
	m.structural = structural
}

// SetFocus sets what has keyboard focus.
func (m *StatusBarModel) SetFocus(f Focus) {
	m.focus = f
}

// SetGridState records the grid's edit and drag state for the hints.
func (m *StatusBarModel) SetGridState(editing, dragging bool) {
	m.editing = editing
	m.dragging = dragging
}

// SetPosition sets the right-hand position summary, e.g. "B3  2x4".
func (m *StatusBarModel) SetPosition(pos string) {
	m.position = pos
}

// ClearExpiredMessage clears non-error messages after 3 seconds.
func (m *StatusBarModel) ClearExpiredMessage() {
	if m.messageType != MsgError && time.Since(m.messageTime) > 3*time.Second {
		m.message = ""
	}
}

// View renders the status bar.
func (m StatusBarModel) View() string {
	// Left side: keybinding hints
	hints := m.contextHints()

	// Right side: modified cells + position
	var rightParts []string
	if m.modified > 0 {
		rightParts = append(rightParts, ModifiedText.Render(fmt.Sprintf("Modified: %d", m.modified)))
	}
	if m.structural > 0 {
		rightParts = append(rightParts, fmt.Sprintf("Structural: %d", m.structural))
	}
	if m.position != "" {
		rightParts = append(rightParts, m.position)
	}
	right := strings.Join(rightParts, " | ")

	// Message overlay
	if m.message != "" {
		var msgStyle lipgloss.Style
		switch m.messageType {
		case MsgError:
			msgStyle = StatusErrorStyle
		case MsgSuccess:
			msgStyle = StatusSuccessStyle
		default:
			msgStyle = StatusBarStyle
		}
		hints = msgStyle.Render(m.message)
	}

	w := m.width
	if w < 20 {
		w = 20
	}
	gap := w - lipgloss.Width(hints) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	line := hints + strings.Repeat(" ", gap) + right
	return StatusBarStyle.Width(w).Render(line)
}

func (m StatusBarModel) contextHints() string {
	switch m.focus {
	case FocusMenu:
		return "↑/↓ Choose | Enter Apply | Esc Close"
	case FocusAsk:
		return "Enter Ask | Alt+Enter New line | Tab Switch pane"
	}
	switch {
	case m.editing:
		return "Type to edit | Enter Commit | Tab Next cell | Esc Cancel"
	case m.dragging:
		return "Drag to extend | Release to finish"
	default:
		return "Type to replace | F2 Edit | Ctrl+C/V Copy/Paste | Ctrl+O Rows/Cols | F1 Help"
	}
}
