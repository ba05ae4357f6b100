package commands

import (
	"github.com/spf13/cobra"

	"driftwatch/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyses as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcp.NewServer(cfg).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
