package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/estimate-pro/internal/mcp"
)

// MCPRunner backs the estimate_deliverables MCP tool, set in app.go.
var MCPRunner mcp.EstimateRunner

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run an MCP (Model Context Protocol) server exposing estimation tools
to AI coding assistants: estimate_deliverables, infer_category, and
get_session_metrics.

The server communicates over stdio and runs until the client disconnects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MCPRunner == nil {
			return fmt.Errorf("estimate runner not initialized")
		}
		server := mcp.NewServer(MCPRunner, MetricsCalc, appVersion)
		return server.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
