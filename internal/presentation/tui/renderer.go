package tui

import (
	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column width used when the terminal size is unknown.
const DefaultWordWrap = 80

// NewRenderer returns a function that renders markdown using glamour, wrapped at width.
// If the renderer cannot be built the markdown is returned unchanged.
func NewRenderer(width int) func(string) (string, error) {
	if width <= 0 {
		width = DefaultWordWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Plain
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Plain is the renderer used when stdout is not a terminal.
func Plain(markdown string) (string, error) {
	return markdown + "\n", nil
}
