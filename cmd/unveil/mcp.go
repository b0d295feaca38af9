package main

import (
	"context"

	"github.com/aretw0/unveil/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes page views as MCP tools (open_view, send_signal, inspect_view, close_view)
so agents can walk through a disclosure sequence.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetString("port")
		baseURL, _ := cmd.Flags().GetString("base-url")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.ServeMCP(sigCtx, cli.MCPOptions{
			GlobalOptions: globalOptions(cmd),
			StoreOptions:  storeOptions(cmd),
			Transport:     transport,
			Addr:          ":" + port,
			BaseURL:       baseURL,
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	addStoreFlags(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("port", "8081", "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("base-url", "", "Public base URL (only for SSE)")
}
