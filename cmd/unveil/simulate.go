package main

import (
	"context"
	"os"

	"github.com/aretw0/unveil/internal/cli"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <script.yaml>",
	Short: "Replay a script of timed signals on a virtual clock",
	Long: `Replays a recorded page view and prints when each item would be revealed.
Cascade reveals are placed at their exact due times; no real time passes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		return cli.Simulate(context.Background(), cli.SimulateOptions{
			GlobalOptions: globalOptions(cmd),
			ScriptPath:    args[0],
			JSON:          jsonMode,
		}, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Bool("json", false, "Print decisions as NDJSON")
}
