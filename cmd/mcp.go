package cmd

import (
	"github.com/huangsam/flowstate/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Flowstate MCP server",
	Long:  `Launch an MCP server that lets AI agents read reports, sync and change settings via standard tools.`,
	// Stdio carries the protocol, so setup must not print anything.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		svc, metrics, err := newService(rootCtx)
		if err != nil {
			return err
		}
		defer closeMetrics(rootCtx, metrics)
		return mcp.StartMCPServer(rootCtx, cfg, svc)
	},
}

