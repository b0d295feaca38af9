package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/unveil/internal/presentation/graph"
)

// PrintConfig writes the effective configuration as YAML.
func PrintConfig(opts GlobalOptions, out io.Writer) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// PrintGraph writes the reveal rules of the configuration as a Mermaid flowchart.
func PrintGraph(opts GlobalOptions, out io.Writer) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, graph.GenerateMermaid(cfg, nil))
	return err
}
