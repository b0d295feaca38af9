package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Unveil banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _   _                _ _ ", "#818cf8"},
		{"| | | |_ ____   _____(_) |", "#a78bfa"},
		{"| | | | '_ \\ \\ / / _ \\ | |", "#c084fc"},
		{"| |_| | | | \\ V /  __/ | |", "#e879f9"},
		{" \\___/|_| |_|\\_/ \\___|_|_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
