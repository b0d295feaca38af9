package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/unveil/pkg/runner"
	"github.com/muesli/termenv"
)

var causeColors = map[string]string{
	runner.CauseCascade: "#f472b6",
	"action":            "#818cf8",
	"scroll":            "#34d399",
	"tick":              "#fbbf24",
	"reveal":            "#a78bfa",
}

// TimelineFormatter colors the cause column of each decision for the profile of w.
// On a non-color output it matches runner.FormatPlain.
func TimelineFormatter(w io.Writer) runner.Formatter {
	p := termenv.NewOutput(w).ColorProfile()
	return func(d runner.Decision) string {
		if p == termenv.Ascii {
			return runner.FormatPlain(d)
		}
		elapsed := fmt.Sprintf("+%-8s", d.Elapsed.Round(time.Millisecond))
		cause := termenv.String(fmt.Sprintf("%-8s", d.Cause))
		if c, ok := causeColors[d.Cause]; ok {
			cause = cause.Foreground(p.Color(c))
		}
		items := termenv.String(strings.Join(d.Revealed, ", ")).Bold()
		return fmt.Sprintf("%s %s %s", termenv.String(elapsed).Faint(), cause, items)
	}
}
