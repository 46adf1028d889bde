package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PickerItem is one choice in a picker.
type PickerItem struct {
	Label  string
	Detail string
}

// PickerModel lets the user choose one item from a filterable list. It
// runs as its own program before the workbench starts.
type PickerModel struct {
	title     string
	items     []PickerItem
	filtered  []int
	filter    textinput.Model
	cursor    int
	chosen    int
	cancelled bool
	width     int
	height    int
}

// NewPickerModel creates a picker over items.
func NewPickerModel(title string, items []PickerItem) PickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = "/ "
	ti.Focus()
	m := PickerModel{
		title:  title,
		items:  items,
		filter: ti,
		chosen: -1,
	}
	m.applyFilter()
	return m
}

// Chosen returns the selected item.
func (m PickerModel) Chosen() (PickerItem, bool) {
	if m.cancelled || m.chosen < 0 {
		return PickerItem{}, false
	}
	return m.items[m.chosen], true
}

func (m *PickerModel) applyFilter() {
	query := strings.TrimSpace(m.filter.Value())
	m.filtered = nil
	for i, item := range m.items {
		if query == "" || FuzzyMatch(item.Label, query) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
}

// Init satisfies tea.Model.
func (m PickerModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles navigation, filtering and selection.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if len(m.filtered) == 0 {
				return m, nil
			}
			m.chosen = m.filtered[m.cursor]
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// View renders the picker.
func (m PickerModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString("  " + m.filter.View())
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(DimText.Render("  No matches"))
		b.WriteString("\n")
	}

	maxShow := 15
	if m.height > 0 {
		maxShow = max(m.height-9, 5)
	}
	start := 0
	if m.cursor >= maxShow {
		start = m.cursor - maxShow + 1
	}
	end := min(start+maxShow, len(m.filtered))

	for i := start; i < end; i++ {
		item := m.items[m.filtered[i]]
		display := item.Label
		if item.Detail != "" {
			display += DimText.Render("  " + item.Detail)
		}
		if i == m.cursor {
			b.WriteString(AccentText.Bold(true).Render("  ▸ " + display))
		} else {
			b.WriteString("    " + display)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(DimText.Render("  Enter select | ↑/↓ move | Esc cancel"))
	b.WriteString("\n")
	return b.String()
}
