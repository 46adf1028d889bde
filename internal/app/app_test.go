package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbench/internal/ask"
	"gridbench/internal/clipboard"
	"gridbench/internal/config"
	"gridbench/internal/grid"
	"gridbench/internal/input"
	"gridbench/internal/log"
	"gridbench/internal/ui"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

type fakeAsker struct {
	answer *ask.Answer
	err    error
	prompt string
	data   [][]string
}

func (f *fakeAsker) Ask(_ context.Context, prompt string, data [][]string) (*ask.Answer, error) {
	f.prompt = prompt
	f.data = data
	return f.answer, f.err
}

func newTestModel(t *testing.T, asker Asker) (Model, *input.Controller) {
	t.Helper()
	store, err := grid.New([][]string{
		{"name", "qty"},
		{"apple", "3"},
		{"pear", "5"},
	})
	require.NoError(t, err)
	ctrl := input.New(store)
	t.Cleanup(ctrl.Close)

	m := NewModel(Options{
		Controller: ctrl,
		Clipboard:  &clipboard.Mock{},
		Asker:      asker,
		Edit:       config.Defaults().Edit,
		Source:     "fruit.csv",
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, ctrl
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func stepCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// mouseOn builds a mouse event at the middle of zone id, rendering m until
// bubblezone has registered it.
func mouseOn(t *testing.T, m Model, id string, button tea.MouseButton, action tea.MouseAction) tea.MouseMsg {
	t.Helper()
	var z *zone.ZoneInfo
	for retries := 0; retries < 50; retries++ {
		_ = m.View()
		time.Sleep(time.Millisecond)
		z = zone.Get(id)
		if z != nil && !z.IsZero() {
			break
		}
	}
	require.NotNil(t, z, "zone %s should be registered after View()", id)
	require.False(t, z.IsZero(), "zone %s should not be zero", id)
	return tea.MouseMsg{X: z.StartX + (z.EndX-z.StartX)/2, Y: z.StartY, Button: button, Action: action}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_BeforeAndAfterResize(t *testing.T) {
	m := NewModel(Options{Controller: mustController(t), Clipboard: &clipboard.Mock{}})
	assert.Equal(t, "Loading...", m.View())

	m, _ = newTestModel(t, nil)
	view := m.View()
	assert.Contains(t, view, "fruit.csv")
	assert.Contains(t, view, "3 rows x 2 cols")
	assert.Contains(t, view, "Ask")
	assert.Contains(t, view, "No questions yet")
}

func mustController(t *testing.T) *input.Controller {
	t.Helper()
	store, err := grid.NewEmpty(1, 1)
	require.NoError(t, err)
	ctrl := input.New(store)
	t.Cleanup(ctrl.Close)
	return ctrl
}

func TestTab_CyclesPanesWhenIdle(t *testing.T) {
	m, _ := newTestModel(t, nil)
	require.Equal(t, GridPane, m.activePane)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, AskPane, m.activePane)
	assert.False(t, m.grid.Focused())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, GridPane, m.activePane)
	assert.True(t, m.grid.Focused())
}

func TestTab_AdvancesWhileEditing(t *testing.T) {
	m, ctrl := newTestModel(t, nil)
	require.NoError(t, ctrl.MoveTo(1, 0, false))

	m = step(t, m, runes("kiwi"))
	require.True(t, ctrl.Editing())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, GridPane, m.activePane)
	v, err := ctrl.Store().Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "kiwi", v)
	assert.True(t, ctrl.Editing())
	assert.Equal(t, grid.Cell{Row: 1, Col: 1}, ctrl.View().Focus)
}

func TestLeavingGridCommitsDraft(t *testing.T) {
	m, ctrl := newTestModel(t, nil)
	require.NoError(t, ctrl.MoveTo(2, 1, false))
	m = step(t, m, runes("9"))
	require.True(t, ctrl.Editing())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, AskPane, m.activePane)
	assert.False(t, ctrl.Editing())
	v, err := ctrl.Store().Cell(2, 1)
	require.NoError(t, err)
	assert.Equal(t, "9", v)
}

func TestAsk_SendsCommittedDataAndShowsAnswer(t *testing.T) {
	asker := &fakeAsker{answer: &ask.Answer{Output: "8 fruit in total"}}
	m, ctrl := newTestModel(t, asker)

	// A draft in progress is not part of the request.
	require.NoError(t, ctrl.MoveTo(1, 1, false))
	m = step(t, m, runes("100"))
	require.True(t, ctrl.Editing())

	m, cmd := stepCmd(t, m, ui.AskSubmitMsg{Prompt: "how many fruit?"})
	require.NotNil(t, cmd)
	assert.True(t, m.transcript.Pending())
	assert.Contains(t, m.transcript.Text(), "Thinking...")

	m = step(t, m, cmd())
	assert.Equal(t, "how many fruit?", asker.prompt)
	assert.Equal(t, [][]string{{"name", "qty"}, {"apple", "3"}, {"pear", "5"}}, asker.data)
	assert.False(t, m.transcript.Pending())
	assert.Contains(t, m.transcript.Text(), "> how many fruit?\n8 fruit in total")
	assert.True(t, ctrl.Editing())
}

func TestAsk_PromptEnterSubmits(t *testing.T) {
	asker := &fakeAsker{answer: &ask.Answer{Output: "ok"}}
	m, _ := newTestModel(t, asker)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, AskPane, m.activePane)

	m = step(t, m, runes("sum qty"))
	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	submit, ok := cmd().(ui.AskSubmitMsg)
	require.True(t, ok)
	assert.Equal(t, "sum qty", submit.Prompt)
	assert.Empty(t, m.prompt.Value())
}

func TestAsk_FailureShowsError(t *testing.T) {
	asker := &fakeAsker{err: errors.New("connection refused")}
	m, _ := newTestModel(t, asker)

	m, cmd := stepCmd(t, m, ui.AskSubmitMsg{Prompt: "anything?"})
	require.NotNil(t, cmd)
	m = step(t, m, cmd())

	assert.Contains(t, m.transcript.Text(), "Error: Unable to reach the backend.")
	text, typ := m.statusbar.Message()
	assert.Equal(t, ui.MsgError, typ)
	assert.True(t, strings.Contains(text, "connection refused"))
}

func TestAsk_NoBackendFailsImmediately(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, cmd := stepCmd(t, m, ui.AskSubmitMsg{Prompt: "hello"})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.transcript.Len())
	assert.False(t, m.transcript.Pending())
}

func TestMenu_InsertRowFlow(t *testing.T) {
	m, ctrl := newTestModel(t, nil)

	m = step(t, m, ui.OpenMenuMsg{Target: ui.MenuTarget{Row: 1, HasRow: true}})
	require.True(t, m.menu.Visible())
	assert.Contains(t, m.View(), "Insert row above")

	// Grid keys do not reach the grid while the menu is open.
	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	action, ok := cmd().(ui.MenuActionMsg)
	require.True(t, ok)
	assert.Equal(t, ui.ActionInsertRowAbove, action.Action)
	assert.False(t, m.menu.Visible())

	m = step(t, m, action)
	assert.Equal(t, 4, ctrl.Store().Rows())
	v, err := ctrl.Store().Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "", v)
	assert.Equal(t, 1, ctrl.Tracker().StructuralCount())
}

func TestMenu_RightClickReleaseDoesNotApplyAction(t *testing.T) {
	m, ctrl := newTestModel(t, nil)

	m, cmd := stepCmd(t, m, mouseOn(t, m, ui.CellZoneID(1, 0), tea.MouseButtonRight, tea.MouseActionPress))
	require.NotNil(t, cmd)
	open, ok := cmd().(ui.OpenMenuMsg)
	require.True(t, ok)
	m = step(t, m, open)
	require.True(t, m.menu.Visible())

	// The menu is centered, so the release of the same right click can land
	// on "Delete row".
	deleteRow := ui.MenuItemZoneID(2)
	m, cmd = stepCmd(t, m, mouseOn(t, m, deleteRow, tea.MouseButtonRight, tea.MouseActionRelease))
	assert.Nil(t, cmd)
	m, cmd = stepCmd(t, m, mouseOn(t, m, deleteRow, tea.MouseButtonLeft, tea.MouseActionRelease))
	assert.Nil(t, cmd)
	assert.True(t, m.menu.Visible())
	assert.Equal(t, 3, ctrl.Store().Rows())
	assert.Zero(t, ctrl.Tracker().StructuralCount())

	m, _ = stepCmd(t, m, mouseOn(t, m, deleteRow, tea.MouseButtonLeft, tea.MouseActionPress))
	m, cmd = stepCmd(t, m, mouseOn(t, m, deleteRow, tea.MouseButtonLeft, tea.MouseActionRelease))
	require.NotNil(t, cmd)
	action, ok := cmd().(ui.MenuActionMsg)
	require.True(t, ok)
	assert.Equal(t, ui.ActionDeleteRow, action.Action)

	step(t, m, action)
	assert.Equal(t, 2, ctrl.Store().Rows())
	v, err := ctrl.Store().Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "pear", v)
}

func TestFocusChangesAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(nil) })

	m, _ := newTestModel(t, nil)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, AskPane, m.activePane)
	assert.Contains(t, buf.String(), "[ui] focus changed from=grid to=ask")

	buf.Reset()
	step(t, m, ui.OpenMenuMsg{Target: ui.MenuTarget{Row: 0, HasRow: true}})
	assert.Contains(t, buf.String(), "[ui] menu opened")
}

func TestMenu_EscapeCloses(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = step(t, m, ui.OpenMenuMsg{Target: ui.MenuTarget{Col: 0, HasCol: true}})
	require.True(t, m.menu.Visible())

	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.menu.Visible())
	require.NotNil(t, cmd)
	_, ok := cmd().(ui.MenuClosedMsg)
	assert.True(t, ok)
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyF1})
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keys")

	m = step(t, m, runes("x"))
	assert.False(t, m.showHelp)
}

func TestQuitCommitsDraft(t *testing.T) {
	m, ctrl := newTestModel(t, nil)
	require.NoError(t, ctrl.MoveTo(0, 0, false))
	m = step(t, m, runes("label"))

	_, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	v, err := ctrl.Store().Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "label", v)
}

func TestStatusMsgReachesStatusBar(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = step(t, m, ui.StatusMsg{Text: "Copied 2 cells", Type: ui.MsgSuccess})
	text, typ := m.statusbar.Message()
	assert.Equal(t, "Copied 2 cells", text)
	assert.Equal(t, ui.MsgSuccess, typ)
}
