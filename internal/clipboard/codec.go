// Package clipboard converts cell ranges to and from the tab-separated text
// spreadsheets put on the system clipboard, and applies pasted ranges to a
// grid.
package clipboard

import (
	"strings"

	"gridbench/internal/grid"
)

// Serialize joins cells with a tab and rows with a newline. Nothing is
// quoted or escaped.
func Serialize(rows [][]string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, "\t")
	}
	return strings.Join(lines, "\n")
}

// SerializeRegion serializes the committed cells inside rect.
func SerializeRegion(store *grid.Store, rect grid.Rect) (string, error) {
	rows, err := store.Region(rect)
	if err != nil {
		return "", err
	}
	return Serialize(rows), nil
}

// Deserialize splits text on newlines, then each line on tabs. Rows may
// have different lengths. It is the exact inverse of Serialize.
func Deserialize(text string) [][]string {
	lines := strings.Split(text, "\n")
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = strings.Split(line, "\t")
	}
	return rows
}

// Normalize cleans text coming from a platform clipboard or a terminal
// paste: line endings become "\n" and one trailing newline is dropped.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSuffix(text, "\n")
}

// Writer is the part of grid.Store a paste needs.
type Writer interface {
	Bounds() grid.Bounds
	SetCell(r, c int, value string) error
}

// ApplyPaste writes rows into w with rows[0][0] at origin. Cells that fall
// outside the grid are skipped; the grid never grows. It returns the number
// of cells written.
func ApplyPaste(w Writer, origin grid.Cell, rows [][]string) int {
	b := w.Bounds()
	written := 0
	for i, row := range rows {
		r := origin.Row + i
		if r >= b.Rows {
			break
		}
		for j, value := range row {
			c := origin.Col + j
			if !b.Contains(r, c) {
				continue
			}
			if err := w.SetCell(r, c, value); err != nil {
				continue
			}
			written++
		}
	}
	return written
}
