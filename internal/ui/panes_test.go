package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbench/internal/config"
)

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		target, query string
		want          bool
	}{
		{"orders", "ord", true},
		{"order_items", "oi", true},
		{"Customers", "cust", true},
		{"orders", "sro", false},
		{"anything", "", true},
		{"", "a", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FuzzyMatch(tt.target, tt.query), "%q ~ %q", tt.target, tt.query)
	}
}

func TestApplyTheme_OverridesNonEmptyColors(t *testing.T) {
	defaults := config.Defaults().Theme
	t.Cleanup(func() { ApplyTheme(defaults) })

	ApplyTheme(config.ThemeConfig{Accent: "#112233"})
	assert.Equal(t, "#112233", string(ColorAccent))
	assert.Equal(t, defaults.Danger, string(ColorDanger))
	assert.Equal(t, ColorAccent, FocusedBorder.GetBorderTopForeground())
}

func TestMenuTarget_Actions(t *testing.T) {
	cell := MenuTarget{Row: 1, Col: 2, HasRow: true, HasCol: true}
	assert.Len(t, cell.Actions(), 6)

	row := MenuTarget{Row: 1, HasRow: true}
	assert.Equal(t, []MenuAction{ActionInsertRowAbove, ActionInsertRowBelow, ActionDeleteRow}, row.Actions())

	col := MenuTarget{Col: 0, HasCol: true}
	assert.Equal(t, []MenuAction{ActionInsertColumnBefore, ActionInsertColumnAfter, ActionDeleteColumn}, col.Actions())
}

func TestMenu_KeyboardChoosesAction(t *testing.T) {
	m := NewMenuModel()
	m.Open(MenuTarget{Col: 3, HasCol: true})
	require.True(t, m.Visible())
	assert.Contains(t, m.View(), "Column D")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("j")) // already at the last item
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(MenuActionMsg)
	require.True(t, ok)
	assert.Equal(t, ActionDeleteColumn, msg.Action)
	assert.Equal(t, 3, msg.Target.Col)
	assert.False(t, m.Visible())
}

func TestMenu_ToggleKeyCloses(t *testing.T) {
	m := NewMenuModel()
	m.Open(MenuTarget{Row: 0, HasRow: true})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.False(t, m.Visible())
	require.NotNil(t, cmd)
	assert.Equal(t, MenuClosedMsg{}, cmd())
}

func TestMenu_HiddenIgnoresInput(t *testing.T) {
	m := NewMenuModel()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, m.View())
}

func TestMenu_MouseChoosesOnLeftPressAndReleaseOfSameItem(t *testing.T) {
	m := NewMenuModel()
	m.SetSize(100, 30)
	m.Open(MenuTarget{Row: 1, Col: 0, HasRow: true, HasCol: true})
	deleteRow := MenuItemZoneID(2)

	// The release of the right click that opened the menu.
	m, cmd := m.Update(mouseAt(t, m, deleteRow, tea.MouseButtonRight, tea.MouseActionRelease))
	assert.Nil(t, cmd)

	m, cmd = m.Update(mouseAt(t, m, deleteRow, tea.MouseButtonLeft, tea.MouseActionRelease))
	assert.Nil(t, cmd, "release without a press")

	m, _ = m.Update(mouseAt(t, m, MenuItemZoneID(0), tea.MouseButtonLeft, tea.MouseActionPress))
	m, cmd = m.Update(mouseAt(t, m, deleteRow, tea.MouseButtonLeft, tea.MouseActionRelease))
	assert.Nil(t, cmd, "press and release on different items")
	require.True(t, m.Visible())

	m, _ = m.Update(mouseAt(t, m, deleteRow, tea.MouseButtonLeft, tea.MouseActionPress))
	m, cmd = m.Update(mouseAt(t, m, deleteRow, tea.MouseButtonLeft, tea.MouseActionRelease))
	msg, ok := runCmd(t, cmd).(MenuActionMsg)
	require.True(t, ok)
	assert.Equal(t, ActionDeleteRow, msg.Action)
	assert.Equal(t, 1, msg.Target.Row)
	assert.False(t, m.Visible())
}

func TestTranscript_PlaceholderThenAnswer(t *testing.T) {
	m := NewTranscriptModel()
	m.SetSize(40, 12)
	assert.Contains(t, m.View(), "No questions yet")

	first := m.Add("total qty?")
	second := m.Add("max price?")
	assert.True(t, m.Pending())
	assert.Equal(t, "> total qty?\nThinking...\n\n> max price?\nThinking...", m.Text())

	m.Resolve(first, "8")
	m.Fail(second)
	assert.False(t, m.Pending())
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "> total qty?\n8\n\n> max price?\nError: Unable to reach the backend.", m.Text())

	// Out-of-range indexes are ignored.
	m.Resolve(7, "x")
	m.Fail(-1)
	assert.Equal(t, 2, m.Len())
}

func TestPrompt_SubmitTrimsAndResets(t *testing.T) {
	m := NewPromptModel()
	m.SetSize(40, 6)
	m.SetFocused(true)

	m, _ = m.Update(runes("  sum qty  "))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, AskSubmitMsg{Prompt: "sum qty"}, cmd())
	assert.Empty(t, m.Value())
}

func TestPrompt_BlankOrBusyDoesNotSubmit(t *testing.T) {
	m := NewPromptModel()
	m.SetSize(60, 6)
	m.SetFocused(true)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m.SetValue("question")
	m.SetBusy(true)
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "question", m.Value())
	assert.Contains(t, m.View(), "waiting for answer")
}

func TestPrompt_UnfocusedIgnoresKeys(t *testing.T) {
	m := NewPromptModel()
	m, cmd := m.Update(runes("abc"))
	assert.Nil(t, cmd)
	assert.Empty(t, m.Value())
}

func TestPicker_FilterAndChoose(t *testing.T) {
	items := []PickerItem{{Label: "customers"}, {Label: "orders"}, {Label: "order_items"}}
	var model tea.Model = NewPickerModel("Open table", items)

	model, _ = model.Update(runes("oi"))
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	chosen, ok := model.(PickerModel).Chosen()
	require.True(t, ok)
	assert.Equal(t, "order_items", chosen.Label)
}

func TestPicker_CursorAndCancel(t *testing.T) {
	items := []PickerItem{{Label: "a"}, {Label: "b"}}
	var model tea.Model = NewPickerModel("Pick", items)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Contains(t, model.View(), "▸ b")

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, ok := model.(PickerModel).Chosen()
	assert.False(t, ok)
}

func TestPicker_NoMatches(t *testing.T) {
	var model tea.Model = NewPickerModel("Pick", []PickerItem{{Label: "alpha"}})
	model, _ = model.Update(runes("zz"))
	assert.Contains(t, model.View(), "No matches")

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	_, ok := model.(PickerModel).Chosen()
	assert.False(t, ok)
}

func TestStatusBar_MessagesExpireExceptErrors(t *testing.T) {
	m := NewStatusBarModel()
	m.SetWidth(80)

	m.SetMessage("Copied 4 cells", MsgSuccess)
	m.ClearExpiredMessage()
	text, _ := m.Message()
	assert.Equal(t, "Copied 4 cells", text)

	m.messageTime = time.Now().Add(-4 * time.Second)
	m.ClearExpiredMessage()
	text, _ = m.Message()
	assert.Empty(t, text)

	m.SetMessage("Paste failed", MsgError)
	m.messageTime = time.Now().Add(-time.Minute)
	m.ClearExpiredMessage()
	text, typ := m.Message()
	assert.Equal(t, "Paste failed", text)
	assert.Equal(t, MsgError, typ)
}

func TestStatusBar_ViewShowsCountsAndHints(t *testing.T) {
	m := NewStatusBarModel()
	m.SetWidth(160)
	m.SetModified(3, 1)
	m.SetPosition("B2")

	view := m.View()
	assert.Contains(t, view, "Modified: 3")
	assert.Contains(t, view, "Structural: 1")
	assert.Contains(t, view, "B2")
	assert.Contains(t, view, "F2 Edit")

	m.SetGridState(true, false)
	assert.Contains(t, m.View(), "Esc Cancel")

	m.SetFocus(FocusAsk)
	assert.Contains(t, m.View(), "Alt+Enter")
}
