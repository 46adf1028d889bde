package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gridbench/internal/config"
)

// FuzzyMatch reports whether every rune of query appears in target in
// order, ignoring case.
func FuzzyMatch(target, query string) bool {
	target = strings.ToLower(target)
	query = strings.ToLower(query)
	q := []rune(query)
	qi := 0
	for _, r := range target {
		if qi < len(q) && r == q[qi] {
			qi++
		}
	}
	return qi == len(q)
}

// Color palette
var (
	ColorAccent   = lipgloss.Color("#4ecca3")
	ColorDanger   = lipgloss.Color("#e94560")
	ColorModified = lipgloss.Color("#f0a500")
	ColorDim      = lipgloss.Color("#555555")
)

// Border styles
var (
	FocusedBorder   lipgloss.Style
	UnfocusedBorder lipgloss.Style
)

// Text styles
var (
	AccentText   lipgloss.Style
	DimText      lipgloss.Style
	ErrorText    lipgloss.Style
	SuccessText  lipgloss.Style
	ModifiedText lipgloss.Style
	PendingText  lipgloss.Style
)

// Header styles
var (
	HeaderStyle       lipgloss.Style
	HeaderActiveStyle lipgloss.Style
	SubHeaderStyle    lipgloss.Style
)

// Grid cell styles
var (
	CellNormal   lipgloss.Style
	CellSelected lipgloss.Style
	CellFocus    lipgloss.Style
	CellEditing  lipgloss.Style
)

// Status bar
var (
	StatusBarStyle     lipgloss.Style
	StatusErrorStyle   lipgloss.Style
	StatusSuccessStyle lipgloss.Style
)

// List styles, shared by the menu and the picker
var (
	ListItem       lipgloss.Style
	ListCursorItem lipgloss.Style
	ListInputStyle lipgloss.Style
)

// Top bar style
var TopBarStyle lipgloss.Style

func init() {
	buildStyles()
}

// ApplyTheme replaces the palette with the configured colors and rebuilds
// every style. Empty fields keep the current color.
func ApplyTheme(t config.ThemeConfig) {
	if t.Accent != "" {
		ColorAccent = lipgloss.Color(t.Accent)
	}
	if t.Danger != "" {
		ColorDanger = lipgloss.Color(t.Danger)
	}
	if t.Modified != "" {
		ColorModified = lipgloss.Color(t.Modified)
	}
	if t.Dim != "" {
		ColorDim = lipgloss.Color(t.Dim)
	}
	buildStyles()
}

func buildStyles() {
	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent)

	UnfocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim)

	AccentText = lipgloss.NewStyle().Foreground(ColorAccent)
	DimText = lipgloss.NewStyle().Foreground(ColorDim)
	ErrorText = lipgloss.NewStyle().Foreground(ColorDanger)
	SuccessText = lipgloss.NewStyle().Foreground(ColorAccent)
	ModifiedText = lipgloss.NewStyle().Foreground(ColorModified)
	PendingText = lipgloss.NewStyle().Foreground(ColorDim).Italic(true)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)
	HeaderActiveStyle = HeaderStyle.Reverse(true)
	SubHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorDim)

	CellNormal = lipgloss.NewStyle()
	CellSelected = lipgloss.NewStyle().Reverse(true)
	CellFocus = lipgloss.NewStyle().Reverse(true).Bold(true)
	CellEditing = lipgloss.NewStyle().
		Background(lipgloss.Color("#1a3a2a")).
		Foreground(ColorAccent).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("#333333")).
		Foreground(lipgloss.Color("#cccccc")).
		Padding(0, 1)
	StatusErrorStyle = StatusBarStyle.Foreground(ColorDanger)
	StatusSuccessStyle = StatusBarStyle.Foreground(ColorAccent)

	ListItem = lipgloss.NewStyle().PaddingLeft(1)
	ListCursorItem = lipgloss.NewStyle().
		PaddingLeft(1).
		Reverse(true)
	ListInputStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	TopBarStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("#333333")).
		Foreground(lipgloss.Color("#cccccc")).
		Padding(0, 1)
}
