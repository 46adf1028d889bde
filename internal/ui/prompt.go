package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gridbench/internal/keys"
)

// AskSubmitMsg is sent when the user submits a question.
type AskSubmitMsg struct {
	Prompt string
}

// PromptZoneID marks the prompt pane for mouse focus.
const PromptZoneID = "ask-prompt"

// PromptModel wraps a textarea for composing questions about the grid.
type PromptModel struct {
	textarea textarea.Model
	keys     keys.AskKeyMap
	focused  bool
	busy     bool
	width    int
	height   int
}

// NewPromptModel creates a new prompt input.
func NewPromptModel() PromptModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about the data... (Enter to send)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "  "
	ta.SetWidth(40)
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	return PromptModel{
		textarea: ta,
		keys:     keys.DefaultAskKeyMap(),
	}
}

// SetFocused sets focus state.
func (m *PromptModel) SetFocused(f bool) {
	m.focused = f
	if f {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// Focused returns the focus state.
func (m PromptModel) Focused() bool {
	return m.focused
}

// SetBusy blocks submission while a question is in flight.
func (m *PromptModel) SetBusy(b bool) {
	m.busy = b
}

// SetSize sets the prompt dimensions.
func (m *PromptModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Account for border (2) and header (1)
	innerW := w - 2
	innerH := h - 3
	if innerW < 10 {
		innerW = 10
	}
	if innerH < 1 {
		innerH = 1
	}
	m.textarea.SetWidth(innerW)
	m.textarea.SetHeight(innerH)
}

// Value returns the current prompt text.
func (m PromptModel) Value() string {
	return m.textarea.Value()
}

// SetValue replaces the prompt text.
func (m *PromptModel) SetValue(s string) {
	m.textarea.SetValue(s)
}

// Init satisfies the tea.Model interface.
func (m PromptModel) Init() tea.Cmd {
	return nil
}

// Update handles key events.
func (m PromptModel) Update(msg tea.Msg) (PromptModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !msg.Paste && key.Matches(msg, m.keys.Send) {
		prompt := strings.TrimSpace(m.textarea.Value())
		if prompt == "" || m.busy {
			return m, nil
		}
		m.textarea.Reset()
		return m, func() tea.Msg { return AskSubmitMsg{Prompt: prompt} }
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// View renders the prompt pane.
func (m PromptModel) View() string {
	borderStyle := UnfocusedBorder
	if m.focused {
		borderStyle = FocusedBorder
	}

	innerW := m.width - 2
	if innerW < 10 {
		innerW = 10
	}

	title := HeaderStyle.Render("Ask")
	if m.busy {
		title += " " + PendingText.Render("waiting for answer")
	}
	content := title + "\n" + m.textarea.View()
	return zone.Mark(PromptZoneID, borderStyle.Width(innerW).Render(content))
}
