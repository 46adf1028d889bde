// Package app contains the root Bubble Tea model: the grid pane, the ask
// pane, the row/column menu and the status bar.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gridbench/internal/ask"
	"gridbench/internal/clipboard"
	"gridbench/internal/config"
	"gridbench/internal/input"
	"gridbench/internal/keys"
	"gridbench/internal/log"
	"gridbench/internal/ui"
)

// Pane represents which pane is focused.
type Pane int

const (
	GridPane Pane = iota
	AskPane
)

func (p Pane) String() string {
	if p == AskPane {
		return "ask"
	}
	return "grid"
}

const (
	promptHeight      = 6
	gridWidthPercent  = 65
	defaultAskTimeout = 60 * time.Second
)

// tickMsg is sent to clear expired status messages.
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

// askResultMsg carries the backend's answer to question index.
type askResultMsg struct {
	index  int
	answer *ask.Answer
	err    error
}

// Asker answers questions about grid data.
type Asker interface {
	Ask(ctx context.Context, prompt string, data [][]string) (*ask.Answer, error)
}

// Options configures a Model.
type Options struct {
	Controller *input.Controller
	Clipboard  clipboard.Clipboard
	Asker      Asker
	AskTimeout time.Duration
	Edit       config.EditConfig
	// Source names what the grid was imported from, for the top bar.
	Source string
}

// Model is the root Bubble Tea model.
type Model struct {
	activePane Pane
	grid       ui.GridModel
	prompt     ui.PromptModel
	transcript ui.TranscriptModel
	menu       ui.MenuModel
	statusbar  ui.StatusBarModel
	help       help.Model
	showHelp   bool
	keys       keys.KeyMap
	asker      Asker
	askTimeout time.Duration
	source     string
	width      int
	height     int
}

// NewModel creates the root app model.
func NewModel(opts Options) Model {
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.System{}
	}
	timeout := opts.AskTimeout
	if timeout <= 0 {
		timeout = defaultAskTimeout
	}

	opts.Controller.ReplaceOnType = opts.Edit.TypeToReplace
	grid := ui.NewGridModel(opts.Controller, clip)
	if opts.Edit.MinColWidth > 0 || opts.Edit.MaxColWidth > 0 {
		grid.SetColumnWidths(opts.Edit.MinColWidth, opts.Edit.MaxColWidth)
	}
	grid.SetFocused(true)

	m := Model{
		activePane: GridPane,
		grid:       grid,
		prompt:     ui.NewPromptModel(),
		transcript: ui.NewTranscriptModel(),
		menu:       ui.NewMenuModel(),
		statusbar:  ui.NewStatusBarModel(),
		help:       help.New(),
		keys:       keys.DefaultKeyMap(),
		asker:      opts.Asker,
		askTimeout: timeout,
		source:     opts.Source,
	}
	m.help.ShowAll = true
	m.syncStatus()
	return m
}

// Init starts the app.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m, cmd = m.update(msg)
	m.syncStatus()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tickMsg:
		m.statusbar.ClearExpiredMessage()
		return m, tickCmd()

	case ui.StatusMsg:
		m.statusbar.SetMessage(msg.Text, msg.Type)
		return m, nil

	case ui.OpenMenuMsg:
		m.menu.Open(msg.Target)
		return m, nil

	case ui.MenuActionMsg:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.ApplyMenuAction(msg)
		return m, cmd

	case ui.MenuClosedMsg:
		return m, nil

	case ui.AskSubmitMsg:
		return m, m.submit(msg.Prompt)

	case askResultMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatAsk, "ask failed", msg.err)
			m.transcript.Fail(msg.index)
			m.statusbar.SetMessage("Ask failed: "+msg.err.Error(), ui.MsgError)
		} else {
			m.transcript.Resolve(msg.index, msg.answer.Text())
		}
		m.prompt.SetBusy(m.transcript.Pending())
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Clipboard results and anything else the grid started.
	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, m.quit()
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = true
		return m, nil
	}
	if m.menu.Visible() {
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}

	editing := m.grid.Controller().Editing()
	switch {
	case key.Matches(msg, m.keys.NextPane):
		// Tab commits and advances while a cell is being edited.
		if !(m.activePane == GridPane && editing) {
			return m, m.cycleFocus()
		}
	case key.Matches(msg, m.keys.PrevPane):
		return m, m.cycleFocus()
	}

	var cmd tea.Cmd
	switch m.activePane {
	case GridPane:
		m.grid, cmd = m.grid.Update(msg)
	case AskPane:
		if key.Matches(msg, keys.DefaultAskKeyMap().Scroll) {
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
		m.prompt, cmd = m.prompt.Update(msg)
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.menu.Visible() {
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}

	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		if z := zone.Get(ui.TranscriptZoneID); z != nil && z.InBounds(msg) {
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
	}

	grid, cmd, handled := m.grid.HandleMouse(msg)
	m.grid = grid
	if handled && msg.Action == tea.MouseActionPress && m.activePane != GridPane {
		return m, tea.Batch(cmd, m.focus(GridPane))
	}
	if !handled && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress {
		if z := zone.Get(ui.PromptZoneID); z != nil && z.InBounds(msg) && m.activePane != AskPane {
			return m, tea.Batch(cmd, m.focus(AskPane))
		}
	}
	return m, cmd
}

// submit records the question and sends it with the committed grid.
func (m *Model) submit(prompt string) tea.Cmd {
	idx := m.transcript.Add(prompt)
	if m.asker == nil {
		m.transcript.Fail(idx)
		return nil
	}
	m.prompt.SetBusy(true)

	data := m.grid.Controller().Store().Snapshot()
	asker, timeout := m.asker, m.askTimeout
	log.Info(log.CatAsk, "question submitted", "rows", len(data))
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		answer, err := asker.Ask(ctx, prompt, data)
		return askResultMsg{index: idx, answer: answer, err: err}
	}
}

func (m *Model) cycleFocus() tea.Cmd {
	if m.activePane == GridPane {
		return m.focus(AskPane)
	}
	return m.focus(GridPane)
}

// focus moves keyboard focus. Leaving the grid commits any edit.
func (m *Model) focus(p Pane) tea.Cmd {
	var cmd tea.Cmd
	if m.activePane == GridPane && p != GridPane {
		if err := m.grid.Controller().Commit(); err != nil {
			log.ErrorErr(log.CatInput, "commit on blur", err)
			cmd = func() tea.Msg { return ui.StatusMsg{Text: err.Error(), Type: ui.MsgError} }
		}
	}
	if m.activePane != p {
		log.Debug(log.CatUI, "focus changed", "from", m.activePane, "to", p)
	}
	m.activePane = p
	m.grid.SetFocused(p == GridPane)
	m.prompt.SetFocused(p == AskPane)
	m.transcript.SetFocused(p == AskPane)
	return cmd
}

func (m *Model) quit() tea.Cmd {
	if err := m.grid.Controller().Commit(); err != nil {
		log.ErrorErr(log.CatInput, "commit on quit", err)
	}
	return tea.Quit
}

func (m *Model) syncStatus() {
	ctrl := m.grid.Controller()
	tracker := ctrl.Tracker()
	m.statusbar.SetModified(tracker.PendingCount(), tracker.StructuralCount())
	m.statusbar.SetGridState(ctrl.Editing(), ctrl.Mode() == input.ModeDragging)
	m.statusbar.SetPosition(m.grid.Position())
	switch {
	case m.menu.Visible():
		m.statusbar.SetFocus(ui.FocusMenu)
	case m.activePane == AskPane:
		m.statusbar.SetFocus(ui.FocusAsk)
	default:
		m.statusbar.SetFocus(ui.FocusGrid)
	}
}

// View renders the full layout.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.menu.Visible() {
		return zone.Scan(m.menu.View())
	}
	if m.showHelp {
		panel := ui.FocusedBorder.Padding(1, 2).Render(
			ui.HeaderStyle.Render("Keys") + "\n\n" + m.help.View(m.keys))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
	}

	b := m.grid.Controller().Store().Bounds()
	topBar := ui.TopBarStyle.Width(m.width).Render(
		fmt.Sprintf(" %s  %d rows x %d cols ", m.source, b.Rows, b.Cols),
	)

	right := lipgloss.JoinVertical(lipgloss.Left, m.prompt.View(), m.transcript.View())
	mainArea := lipgloss.JoinHorizontal(lipgloss.Top, m.grid.View(), right)

	view := lipgloss.JoinVertical(lipgloss.Left, topBar, mainArea, m.statusbar.View())
	return zone.Scan(view)
}

func (m *Model) recalcLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	gridW := m.width * gridWidthPercent / 100
	rightW := m.width - gridW
	availH := m.height - 2 // top bar + status bar
	if availH < promptHeight+3 {
		availH = promptHeight + 3
	}

	m.grid.SetSize(gridW, availH)
	m.prompt.SetSize(rightW, promptHeight)
	m.transcript.SetSize(rightW, availH-promptHeight)
	m.menu.SetSize(m.width, m.height)
	m.statusbar.SetWidth(m.width)
	m.help.Width = m.width - 6
}
