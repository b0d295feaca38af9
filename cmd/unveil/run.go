package main

import (
	"context"
	"os"

	"github.com/aretw0/unveil/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a view in real time from standard input",
	Long: `Opens a view and applies the signals typed on standard input (action, scroll <px>,
tick, reveal <item>). Cascade reveals fire on their own. Ctrl+D ends the view.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		viewID, _ := cmd.Flags().GetString("view")
		jsonMode, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")
		plain, _ := cmd.Flags().GetBool("plain")
		tick, _ := cmd.Flags().GetDuration("tick")
		contentPath, _ := cmd.Flags().GetString("content")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunSession(sigCtx, cli.RunOptions{
			GlobalOptions: globalOptions(cmd),
			ViewID:        viewID,
			JSON:          jsonMode,
			Quiet:         quiet,
			Plain:         plain,
			Tick:          tick,
			ContentPath:   contentPath,
		}, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("view", "", "View ID (random when empty)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner and status messages")
	runCmd.Flags().Bool("plain", false, "Do not style rendered content")
	runCmd.Flags().Duration("tick", 0, "Evaluate dwell at this interval while idle (0 disables)")
	runCmd.Flags().String("content", "", "Content JSON file whose copy is shown as items are revealed")
}
