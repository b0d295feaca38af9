package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/unveil/pkg/content"
)

// RenderOptions configures the render command.
type RenderOptions struct {
	GlobalOptions
	ContentPath string
	Items       []string
	Plain       bool
}

// Render prints the copy of the given items (all non-cascade items by default),
// applying the configured fallbacks to missing fields.
func Render(opts RenderOptions, out io.Writer) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	var c content.Content
	if opts.ContentPath != "" {
		if c, err = loadContent(opts.ContentPath); err != nil {
			return err
		}
	}
	resolved := content.Resolve(c, cfg.Fallback)

	items := opts.Items
	if len(items) == 0 {
		items = cfg.Items
	}
	md := resolved.Markdown(items)

	rendered, err := chooseRenderer(out, opts.Plain)(md)
	if err != nil {
		return fmt.Errorf("failed to render content: %w", err)
	}
	if _, err := fmt.Fprint(out, rendered); err != nil {
		return err
	}
	if len(resolved.Substituted) > 0 {
		printSystemMessage(out, "Fallback copy used for: %v", resolved.Substituted)
	}
	return nil
}
