package findings

import (
	"fmt"
	"strings"
)

// Markdown renders the report for terminal output.
func (r Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Scan results\n\n")

	if r.Overview != nil {
		if s := r.Overview.Status(); s != "" {
			fmt.Fprintf(&b, "**%s**\n\n", s)
		}
		if t := r.Overview.Text(); t != "" {
			fmt.Fprintf(&b, "%s\n\n", t)
		}
	}

	if r.Empty() {
		fmt.Fprintf(&b, "_%s_\n", NoRiskMessage)
		return b.String()
	}

	for _, f := range r.Findings {
		fmt.Fprintf(&b, "## %s\n\n", f.Title)
		fmt.Fprintf(&b, "*Initial: %s*\n\n", f.Severity.Label())
		fmt.Fprintf(&b, "%s\n\n", f.Message)
		if f.Action != "" {
			fmt.Fprintf(&b, "> Recommended: %s\n\n", f.Action)
		}
	}
	return b.String()
}
