package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table provides minimal table rendering.
// Uses simple spacing alignment without borders; the last column is
// truncated to fit the display width.
type Table struct {
	rows       [][]string
	colWidths  []int
	colPadding int
	display    *Display
}

// NewTable creates a new table with the specified number of columns
func NewTable(cols int, display *Display) *Table {
	if display == nil {
		display = StdoutDisplay()
	}
	return &Table{
		colWidths:  make([]int, cols),
		colPadding: 2,
		display:    display,
	}
}

// AddRow adds a row to the table. Cells may be styled; widths ignore ANSI
// sequences.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.colWidths))
	for i := 0; i < len(t.colWidths) && i < len(cells); i++ {
		row[i] = cells[i]
		if w := lipgloss.Width(cells[i]); w > t.colWidths[i] {
			t.colWidths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// Len reports the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// String renders the table as a string
func (t *Table) String() string {
	if len(t.rows) == 0 {
		return ""
	}

	var sb strings.Builder
	padding := strings.Repeat(" ", t.colPadding)

	lead := 0
	for i := 0; i < len(t.colWidths)-1; i++ {
		lead += t.colWidths[i] + t.colPadding
	}
	lastWidth := t.display.Remaining(lead)

	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString(padding)
			}
			if i < len(row)-1 {
				sb.WriteString(cell)
				sb.WriteString(strings.Repeat(" ", t.colWidths[i]-lipgloss.Width(cell)))
			} else {
				sb.WriteString(Truncate(cell, lastWidth))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Truncate shortens s to width cells, ending in "…". Styled strings are
// returned unchanged.
func Truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width || strings.Contains(s, "\x1b") {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
