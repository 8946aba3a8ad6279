// ABOUTME: MCP server command for feedreader CLI
// ABOUTME: Starts stdio-based MCP server for AI agent integration

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/feedreader/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	Long: `Start the Model Context Protocol (MCP) server on stdio.

This lets AI agents list and load feeds, read entries, toggle the menu,
and run the behavioral checks through structured tools.

The server communicates via JSON-RPC on stdin/stdout; logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, err := cfg.GetCheckTimeout()
		if err != nil {
			return err
		}

		server := mcp.NewServer(app, timeout, logger)
		if err := server.ServeStdio(); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
