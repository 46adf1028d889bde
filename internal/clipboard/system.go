package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when the platform clipboard cannot be
// read or written. Callers leave their state untouched and report it.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Clipboard is a text clipboard.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// System is the platform clipboard.
type System struct{}

// ReadText returns the clipboard contents.
func (System) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", ErrClipboardUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return text, nil
}

// WriteText replaces the clipboard contents.
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

// Mock is an in-memory clipboard. Set Fail to make every call return
// ErrClipboardUnavailable.
type Mock struct {
	Text string
	Fail bool
}

// ReadText returns Text.
func (m *Mock) ReadText() (string, error) {
	if m.Fail {
		return "", ErrClipboardUnavailable
	}
	return m.Text, nil
}

// WriteText stores text.
func (m *Mock) WriteText(text string) error {
	if m.Fail {
		return ErrClipboardUnavailable
	}
	m.Text = text
	return nil
}
