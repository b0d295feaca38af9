package main

import (
	"os"

	"github.com/aretw0/unveil/internal/cli"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.PrintConfig(globalOptions(cmd), os.Stdout)
	},
}

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the reveal rules as a Mermaid diagram",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.PrintGraph(globalOptions(cmd), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(graphCmd)
}
