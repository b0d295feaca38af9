package main

import (
	"os"

	"github.com/aretw0/unveil/internal/cli"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Manage live views in a shared store",
	Long:  `List, inspect and remove the views held in the Redis view store.`,
}

var viewLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all live views",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ListViews(cmd.Context(), viewOptions(cmd), os.Stdout)
	},
}

var viewInspectCmd = &cobra.Command{
	Use:   "inspect <view-id>",
	Short: "Inspect the disclosure state of a view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asGraph, _ := cmd.Flags().GetBool("graph")
		return cli.InspectView(cmd.Context(), viewOptions(cmd), args[0], asGraph, os.Stdout)
	},
}

var viewRmCmd = &cobra.Command{
	Use:   "rm <view-id>...",
	Short: "Remove one or more views",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RemoveViews(cmd.Context(), viewOptions(cmd), args, os.Stdout)
	},
}

func viewOptions(cmd *cobra.Command) cli.ViewOptions {
	return cli.ViewOptions{GlobalOptions: globalOptions(cmd), StoreOptions: storeOptions(cmd)}
}

func init() {
	rootCmd.AddCommand(viewCmd)
	for _, c := range []*cobra.Command{viewLsCmd, viewInspectCmd, viewRmCmd} {
		addStoreFlags(c)
		viewCmd.AddCommand(c)
	}
	viewInspectCmd.Flags().Bool("graph", false, "Print a Mermaid diagram with the state overlaid")
}
