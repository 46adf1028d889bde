// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Home     key.Binding
	End      key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Selection
	ExtendUp    key.Binding
	ExtendDown  key.Binding
	ExtendLeft  key.Binding
	ExtendRight key.Binding
	SelectAll   key.Binding

	// Editing
	Edit      key.Binding
	Enter     key.Binding
	Tab       key.Binding
	Escape    key.Binding
	Backspace key.Binding
	Clear     key.Binding

	// Clipboard and structure
	Copy  key.Binding
	Paste key.Binding
	Menu  key.Binding

	// General
	NextPane key.Binding
	PrevPane key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "move right"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "first column"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "last column"),
		),
		Top: key.NewBinding(
			key.WithKeys("ctrl+home"),
			key.WithHelp("ctrl+home", "first cell"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("ctrl+end"),
			key.WithHelp("ctrl+end", "last cell"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),

		ExtendUp: key.NewBinding(
			key.WithKeys("shift+up"),
			key.WithHelp("shift+↑", "extend up"),
		),
		ExtendDown: key.NewBinding(
			key.WithKeys("shift+down"),
			key.WithHelp("shift+↓", "extend down"),
		),
		ExtendLeft: key.NewBinding(
			key.WithKeys("shift+left"),
			key.WithHelp("shift+←", "extend left"),
		),
		ExtendRight: key.NewBinding(
			key.WithKeys("shift+right"),
			key.WithHelp("shift+→", "extend right"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),

		Edit: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "edit cell"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit / commit"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "commit, next cell"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel edit"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "delete char"),
		),
		Clear: key.NewBinding(
			key.WithKeys("delete"),
			key.WithHelp("del", "clear cells"),
		),

		Copy: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "copy"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "paste"),
		),
		Menu: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "row/column menu"),
		),

		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		PrevPane: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous pane"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Home, k.End, k.Top, k.Bottom, k.PageUp, k.PageDown}, // Navigation
		{k.ExtendUp, k.ExtendDown, k.ExtendLeft, k.ExtendRight, k.SelectAll},                  // Selection
		{k.Edit, k.Enter, k.Tab, k.Escape, k.Backspace, k.Clear},                              // Editing
		{k.Copy, k.Paste, k.Menu},                // Clipboard
		{k.NextPane, k.PrevPane, k.Help, k.Quit}, // General
	}
}

// MenuKeyMap defines the keybindings for the row/column menu.
type MenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Close  key.Binding
}

// DefaultMenuKeyMap returns the keybindings for the row/column menu.
func DefaultMenuKeyMap() MenuKeyMap {
	return MenuKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "ctrl+o"),
			key.WithHelp("esc", "close"),
		),
	}
}

// AskKeyMap defines the keybindings for the ask pane.
type AskKeyMap struct {
	Send    key.Binding
	Newline key.Binding
	Scroll  key.Binding
}

// DefaultAskKeyMap returns the keybindings for the ask pane.
func DefaultAskKeyMap() AskKeyMap {
	return AskKeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("alt+enter", "new line"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("pgup", "pgdown"),
			key.WithHelp("pgup/pgdn", "scroll answers"),
		),
	}
}
