package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gridbench/internal/keys"
	"gridbench/internal/log"
)

// MenuAction is a structural edit offered by the row/column menu.
type MenuAction int

const (
	ActionInsertRowAbove MenuAction = iota
	ActionInsertRowBelow
	ActionDeleteRow
	ActionInsertColumnBefore
	ActionInsertColumnAfter
	ActionDeleteColumn
)

func (a MenuAction) String() string {
	switch a {
	case ActionInsertRowAbove:
		return "Insert row above"
	case ActionInsertRowBelow:
		return "Insert row below"
	case ActionDeleteRow:
		return "Delete row"
	case ActionInsertColumnBefore:
		return "Insert column before"
	case ActionInsertColumnAfter:
		return "Insert column after"
	case ActionDeleteColumn:
		return "Delete column"
	}
	return "unknown"
}

// MenuTarget is what the menu was opened on. A cell target offers both
// row and column actions; a header target offers only its own kind.
type MenuTarget struct {
	Row, Col       int
	HasRow, HasCol bool
}

// Actions lists the actions that apply to the target.
func (t MenuTarget) Actions() []MenuAction {
	var actions []MenuAction
	if t.HasRow {
		actions = append(actions, ActionInsertRowAbove, ActionInsertRowBelow, ActionDeleteRow)
	}
	if t.HasCol {
		actions = append(actions, ActionInsertColumnBefore, ActionInsertColumnAfter, ActionDeleteColumn)
	}
	return actions
}

// OpenMenuMsg asks the root model to open the menu on a target.
type OpenMenuMsg struct {
	Target MenuTarget
}

// MenuActionMsg is sent when an action was chosen.
type MenuActionMsg struct {
	Action MenuAction
	Target MenuTarget
}

// MenuClosedMsg is sent when the menu closes without a choice.
type MenuClosedMsg struct{}

// MenuItemZoneID is the bubblezone ID of the i-th menu item.
func MenuItemZoneID(i int) string { return fmt.Sprintf("menu-item-%d", i) }

// MenuModel is the row/column context menu.
type MenuModel struct {
	visible bool
	target  MenuTarget
	actions []MenuAction
	cursor  int
	pressed int // item under the last left press, -1 for none
	keys    keys.MenuKeyMap
	width   int
	height  int
}

// NewMenuModel creates a hidden menu.
func NewMenuModel() MenuModel {
	return MenuModel{keys: keys.DefaultMenuKeyMap(), pressed: -1}
}

// Open shows the menu for target.
func (m *MenuModel) Open(target MenuTarget) {
	m.visible = true
	m.target = target
	m.actions = target.Actions()
	m.cursor = 0
	m.pressed = -1
	log.Debug(log.CatUI, "menu opened", "title", m.title())
}

// Close hides the menu.
func (m *MenuModel) Close() {
	m.visible = false
	m.pressed = -1
}

// Visible reports whether the menu is shown.
func (m MenuModel) Visible() bool {
	return m.visible
}

// Target returns what the menu was opened on.
func (m MenuModel) Target() MenuTarget {
	return m.target
}

// SetSize sets the screen size the menu is centered in.
func (m *MenuModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Update handles key and mouse input while visible.
func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Close):
			m.Close()
			return m, func() tea.Msg { return MenuClosedMsg{} }
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.actions)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			return m.choose(m.cursor)
		}

	case tea.MouseMsg:
		// An item fires on a left release over the item that took the
		// left press.
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		switch msg.Action {
		case tea.MouseActionPress:
			m.pressed = m.itemAt(msg)
		case tea.MouseActionRelease:
			pressed := m.pressed
			m.pressed = -1
			if i := m.itemAt(msg); i >= 0 && i == pressed {
				return m.choose(i)
			}
		}
	}
	return m, nil
}

func (m MenuModel) itemAt(msg tea.MouseMsg) int {
	for i := range m.actions {
		if z := zone.Get(MenuItemZoneID(i)); z != nil && z.InBounds(msg) {
			return i
		}
	}
	return -1
}

func (m MenuModel) choose(i int) (MenuModel, tea.Cmd) {
	if i < 0 || i >= len(m.actions) {
		return m, nil
	}
	chosen := MenuActionMsg{Action: m.actions[i], Target: m.target}
	m.Close()
	return m, func() tea.Msg { return chosen }
}

// View renders the menu centered on the screen.
func (m MenuModel) View() string {
	if !m.visible {
		return ""
	}

	modalW := 32
	if m.width > 0 && modalW > m.width-4 {
		modalW = m.width - 4
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(m.title()))
	b.WriteString("\n\n")
	for i, a := range m.actions {
		label := "  " + a.String()
		var line string
		if i == m.cursor {
			line = ListCursorItem.Width(modalW - 4).Render(label)
		} else {
			line = ListItem.Render(label)
		}
		b.WriteString(zone.Mark(MenuItemZoneID(i), line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(DimText.Render("  Enter apply | Esc close"))

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(1, 2).
		Width(modalW)

	rendered := modalStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, rendered)
	}
	return rendered
}

func (m MenuModel) title() string {
	switch {
	case m.target.HasRow && m.target.HasCol:
		return fmt.Sprintf("Cell %s", cellName(m.target.Row, m.target.Col))
	case m.target.HasRow:
		return fmt.Sprintf("Row %d", m.target.Row+1)
	default:
		return fmt.Sprintf("Column %s", columnName(m.target.Col))
	}
}
