package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/unveil/pkg/config"
	"github.com/aretw0/unveil/pkg/domain"
)

const (
	viewNode    = "view"
	panelNode   = "panel"
	cascadeNode = "cascade"
)

// GenerateMermaid produces a Mermaid flowchart of the reveal rules in cfg.
// Shapes:
// - View entry: ((Circle))
// - Milestone: {{Hexagon}}
// - Cascade item: [[Subroutine]]
// - Auxiliary panel: [/Parallelogram/]
// - Default: [Rectangle]
// When state is not nil, revealed items, the latest reveal and pending cascade
// items are styled.
func GenerateMermaid(cfg config.Config, state *domain.State) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    %s((\"view\"))\n", viewNode)

	var auto []string
	for _, id := range cfg.Items {
		safeID := sanitizeMermaidID(id)
		opener, closer := "[", "]"
		switch {
		case id == cfg.MilestoneItem:
			opener, closer = "{{", "}}"
		case cfg.IsCascade(id):
			opener, closer = "[[", "]]"
		default:
			auto = append(auto, id)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, id, closer)
	}
	fmt.Fprintf(&sb, "    %s[/\"auxiliary panel\"/]\n", panelNode)

	milestone := sanitizeMermaidID(cfg.MilestoneItem)
	fmt.Fprintf(&sb, "    %s -. ⚡ action .-> %s\n", viewNode, milestone)
	fmt.Fprintf(&sb, "    %s -. hides .-> %s\n", milestone, panelNode)

	// Auto-advance walks the remaining items in order.
	from := milestone
	for _, id := range auto {
		safeTo := sanitizeMermaidID(id)
		fmt.Fprintf(&sb, "    %s -- \"scroll %.0fpx / dwell %s\" --> %s\n", from, cfg.ScrollThreshold, cfg.DwellThreshold, safeTo)
		from = safeTo
	}

	if len(cfg.CascadeItems) > 0 {
		fmt.Fprintf(&sb, "    %s{\"%d reveals\"}\n", cascadeNode, cfg.CascadeThreshold)
		from = cascadeNode
		for i, id := range cfg.CascadeItems {
			safeTo := sanitizeMermaidID(id)
			delay := ""
			if i < len(cfg.CascadeDelays) {
				delay = "+" + cfg.CascadeDelays[i].String()
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, delay, safeTo)
			from = safeTo
		}
	}

	if state != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef revealed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef pending fill:#fff,stroke:#9e9e9e,stroke-dasharray:4 2,color:#000;\n")

		for _, id := range state.Revealed {
			fmt.Fprintf(&sb, "    class %s revealed;\n", sanitizeMermaidID(id))
		}
		for _, task := range state.Pending {
			fmt.Fprintf(&sb, "    class %s pending;\n", sanitizeMermaidID(task.ItemID))
		}
		if n := len(state.Revealed); n > 0 {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(state.Revealed[n-1]))
		}
		if state.PanelSuppressed {
			fmt.Fprintf(&sb, "    class %s pending;\n", panelNode)
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
