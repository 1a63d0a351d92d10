package main

import (
	"github.com/spf13/cobra"

	"github.com/arturoeanton/repolens/internal/mcp"
)

func stdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

Configuration is loaded from environment variables and .env file. Set
LOG_FORMAT=json to keep log lines machine readable; logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, logger, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			logger.Info("starting MCP server on stdio", "version", version)
			return mcp.NewServer(a.Answers, a.Config.RetrievalTopK, a.Config.MCPPort, version, logger).ServeStdio()
		},
	}
}
