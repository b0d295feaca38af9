package main

import (
	"os"

	"github.com/aretw0/unveil/internal/cli"
	"github.com/aretw0/unveil/pkg/adapters/analysis"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [lease.txt]",
	Short: "Analyze a lease and print its findings",
	Long: `Checks the lease text and the account like the page does, submits it to the analysis
backend and prints the normalized findings. Reads standard input when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, _ := cmd.Flags().GetString("api")
		token, _ := cmd.Flags().GetString("token")
		jsonMode, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")

		opts := cli.AnalyzeOptions{
			GlobalOptions: globalOptions(cmd),
			BaseURL:       baseURL,
			Token:         token,
			JSON:          jsonMode,
			Plain:         plain,
		}
		if len(args) > 0 {
			opts.InputPath = args[0]
		}
		return cli.Analyze(cmd.Context(), opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("api", analysis.DefaultBaseURL, "Base URL of the analysis backend")
	analyzeCmd.Flags().String("token", os.Getenv("UNVEIL_TOKEN"), "Bearer token of the signed-in account")
	analyzeCmd.Flags().Bool("json", false, "Print the report as JSON")
	analyzeCmd.Flags().Bool("plain", false, "Print markdown without styling")
}
