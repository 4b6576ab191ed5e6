package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomoflow/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server communicates over stdio and exposes tools to manage tasks and
drive the active pomodoro.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := setupSignalHandler(cmd.Context())
		defer stop()

		app.logger.Info("starting MCP server on stdio")

		server := mcp.NewServer(app.tasks, app.session, Version)
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}
