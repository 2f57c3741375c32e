package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmgrok/mcp-mother-skills/internal/mcp"
)

// serveCommand creates the MCP server command.
func (c *CLI) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP stdio server",
		Long:  `Serve exposes detection, catalog, and sync operations as MCP tools over stdio, for use by MCP-capable clients. The server runs until stdin closes or the process is interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			server, err := mcp.NewServer(cfg, c.Logger)
			if err != nil {
				return err
			}
			c.Logger.Info("mcp server listening on stdio")
			return server.ServeStdio(cmd.Context())
		},
	}
}
