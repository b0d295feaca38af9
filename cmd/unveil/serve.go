package main

import (
	"context"

	"github.com/aretw0/unveil/internal/cli"
	httpadapter "github.com/aretw0/unveil/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP view server",
	Long: `Hosts page views over HTTP: views are created, fed signals and closed through a JSON API,
and reveal diffs are streamed with Server-Sent Events. Views live in memory unless
--redis-url points at a shared store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		sweep, _ := cmd.Flags().GetDuration("sweep")
		mcpAddr, _ := cmd.Flags().GetString("mcp-addr")
		mcpBaseURL, _ := cmd.Flags().GetString("mcp-base-url")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.Serve(sigCtx, cli.ServeOptions{
			GlobalOptions: globalOptions(cmd),
			StoreOptions:  storeOptions(cmd),
			Addr:          ":" + port,
			SweepInterval: sweep,
			MCPAddr:       mcpAddr,
			MCPBaseURL:    mcpBaseURL,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addStoreFlags(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Duration("sweep", httpadapter.DefaultSweepInterval, "How often due cascade reveals are fired")
	serveCmd.Flags().String("mcp-addr", "", "Also serve MCP over SSE on this address (e.g. :8081)")
	serveCmd.Flags().String("mcp-base-url", "", "Public base URL of the MCP SSE endpoint")
}
