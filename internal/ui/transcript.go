package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// TranscriptZoneID marks the transcript pane for mouse scrolling.
const TranscriptZoneID = "ask-transcript"

const (
	thinkingText   = "Thinking..."
	unreachableErr = "Error: Unable to reach the backend."
)

type exchange struct {
	prompt  string
	answer  string
	pending bool
	failed  bool
}

// TranscriptModel shows questions and answers, newest at the bottom.
type TranscriptModel struct {
	exchanges []exchange
	viewport  viewport.Model
	focused   bool
	width     int
	height    int
}

// NewTranscriptModel creates an empty transcript.
func NewTranscriptModel() TranscriptModel {
	return TranscriptModel{viewport: viewport.New(20, 5)}
}

// SetFocused sets focus state.
func (m *TranscriptModel) SetFocused(f bool) {
	m.focused = f
}

// SetSize sets the transcript dimensions, border included.
func (m *TranscriptModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	innerW := w - 2
	if innerW < 5 {
		innerW = 5
	}
	innerH := h - 3
	if innerH < 1 {
		innerH = 1
	}
	m.viewport.Width = innerW
	m.viewport.Height = innerH
	m.refresh()
}

// Add appends a pending question and returns its index.
func (m *TranscriptModel) Add(prompt string) int {
	m.exchanges = append(m.exchanges, exchange{prompt: prompt, pending: true})
	m.refresh()
	return len(m.exchanges) - 1
}

// Resolve replaces the placeholder of question i with its answer.
func (m *TranscriptModel) Resolve(i int, answer string) {
	if i < 0 || i >= len(m.exchanges) {
		return
	}
	m.exchanges[i].answer = answer
	m.exchanges[i].pending = false
	m.refresh()
}

// Fail marks question i as unanswered.
func (m *TranscriptModel) Fail(i int) {
	if i < 0 || i >= len(m.exchanges) {
		return
	}
	m.exchanges[i].answer = unreachableErr
	m.exchanges[i].pending = false
	m.exchanges[i].failed = true
	m.refresh()
}

// Pending reports whether any question is awaiting an answer.
func (m TranscriptModel) Pending() bool {
	for _, e := range m.exchanges {
		if e.pending {
			return true
		}
	}
	return false
}

// Len returns the number of questions asked.
func (m TranscriptModel) Len() int {
	return len(m.exchanges)
}

// Text renders the transcript without styling.
func (m TranscriptModel) Text() string {
	var b strings.Builder
	for i, e := range m.exchanges {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("> " + e.prompt + "\n")
		b.WriteString(e.display())
	}
	return b.String()
}

func (e exchange) display() string {
	if e.pending {
		return thinkingText
	}
	return e.answer
}

func (m *TranscriptModel) refresh() {
	wrap := lipgloss.NewStyle().Width(m.viewport.Width)
	var b strings.Builder
	for i, e := range m.exchanges {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(AccentText.Render(wrap.Render("> " + e.prompt)))
		b.WriteString("\n")
		switch {
		case e.pending:
			b.WriteString(PendingText.Render(thinkingText))
		case e.failed:
			b.WriteString(ErrorText.Render(e.answer))
		default:
			b.WriteString(wrap.Render(e.answer))
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// Update scrolls the transcript.
func (m TranscriptModel) Update(msg tea.Msg) (TranscriptModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the transcript pane.
func (m TranscriptModel) View() string {
	borderStyle := UnfocusedBorder
	if m.focused {
		borderStyle = FocusedBorder
	}

	innerW := m.width - 2
	if innerW < 5 {
		innerW = 5
	}
	innerH := m.height - 2
	if innerH < 2 {
		innerH = 2
	}

	header := HeaderStyle.Render("Answers")
	var body string
	if len(m.exchanges) == 0 {
		body = DimText.Render("  No questions yet")
	} else {
		body = m.viewport.View()
	}
	content := lipgloss.NewStyle().Width(innerW).Render(header + "\n" + body)
	return zone.Mark(TranscriptZoneID, borderStyle.Width(innerW).Height(innerH).MaxHeight(innerH+2).Render(content))
}
