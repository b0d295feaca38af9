package tui

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or DefaultWordWrap when it is not a terminal.
func Width(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWordWrap
	}
	return w
}

// RendererFor picks glamour for terminals and plain markdown otherwise.
func RendererFor(f *os.File) func(string) (string, error) {
	if !IsTerminal(f) {
		return Plain
	}
	return NewRenderer(min(Width(f), 120))
}
