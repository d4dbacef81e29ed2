package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cohortpulse/cohortpulse/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the CohortPulse MCP server",
	Long:  `Launch an MCP server that allows AI agents to query leaderboards and alerts via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Keep stdio clean for the protocol; setup logs go to stderr only
		// on failure.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
