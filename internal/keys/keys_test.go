package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Assignments(t *testing.T) {
	k := DefaultKeyMap()
	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"Copy uses ctrl+c", k.Copy, []string{"ctrl+c"}},
		{"Paste uses ctrl+v", k.Paste, []string{"ctrl+v"}},
		{"Quit uses ctrl+q, not ctrl+c", k.Quit, []string{"ctrl+q"}},
		{"Menu uses ctrl+o", k.Menu, []string{"ctrl+o"}},
		{"Edit uses f2", k.Edit, []string{"f2"}},
		{"arrows have no letter aliases", k.Left, []string{"left"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
		})
	}
}

// Printable keys start a replacing edit, so no grid binding may use one.
func TestDefaultKeyMap_NoPrintableBindings(t *testing.T) {
	for _, group := range DefaultKeyMap().FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				require.Greater(t, len([]rune(k)), 1, "binding %q would swallow typing", k)
			}
		}
	}
}

func TestFullHelp_HasHelpText(t *testing.T) {
	for _, group := range DefaultKeyMap().FullHelp() {
		for _, b := range group {
			require.NotEmpty(t, b.Help().Key)
			require.NotEmpty(t, b.Help().Desc)
		}
	}
}

func TestMenuKeyMap_CloseIncludesToggle(t *testing.T) {
	require.Equal(t, []string{"esc", "ctrl+o"}, DefaultMenuKeyMap().Close.Keys())
}
