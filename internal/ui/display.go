package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

const (
	// DefaultWidth is used when stdout is not a terminal or its size is unknown.
	DefaultWidth = 100

	// minColumnWidth keeps truncated table cells readable on narrow terminals.
	minColumnWidth = 12
)

// Display describes the terminal output is written to.
type Display struct {
	Width int
	TTY   bool
}

// DetectDisplay inspects f. Piped output gets DefaultWidth.
func DetectDisplay(f *os.File) *Display {
	d := &Display{Width: DefaultWidth}
	if f == nil || !term.IsTerminal(f.Fd()) {
		return d
	}
	d.TTY = true
	if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
		d.Width = w
	}
	return d
}

// StdoutDisplay is DetectDisplay(os.Stdout).
func StdoutDisplay() *Display { return DetectDisplay(os.Stdout) }

// FixedDisplay returns a terminal Display of the given width.
func FixedDisplay(width int) *Display {
	return &Display{Width: width, TTY: true}
}

// Remaining is the width left after used cells, never below minColumnWidth.
func (d *Display) Remaining(used int) int {
	return max(d.Width-used, minColumnWidth)
}
