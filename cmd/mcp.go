package cmd

import (
	"github.com/huangsam/deadreck/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the deadreck MCP server",
	Long:  `Launch an MCP server that allows AI agents to run dead reckoning and compare strategies via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Headers go to stderr, so stdio stays clean for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
