package main

import (
	"os"

	"github.com/aretw0/unveil/internal/cli"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [content.json]",
	Short: "Render the explanation copy in the terminal",
	Long:  `Renders the copy of each item, substituting the configured fallback for missing fields.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, _ := cmd.Flags().GetStringSlice("items")
		plain, _ := cmd.Flags().GetBool("plain")

		opts := cli.RenderOptions{GlobalOptions: globalOptions(cmd), Items: items, Plain: plain}
		if len(args) > 0 {
			opts.ContentPath = args[0]
		}
		return cli.Render(opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringSlice("items", nil, "Items to render, in order (default: all)")
	renderCmd.Flags().Bool("plain", false, "Print markdown without styling")
}
