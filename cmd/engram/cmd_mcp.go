package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-serve",
		Short: "Run the MCP server over stdio",
		Long: `Start an MCP (Model Context Protocol) server exposing the concept
workspace as tools: list, show, stimulate, decay, compare, merge,
intersect, subtract, bind, graph, and seed.

Intended to be launched by an MCP client; communicates over stdio.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "engram",
				Version: version,
				Root:    root,
			})
			if err != nil {
				return fmt.Errorf("create MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}
}
