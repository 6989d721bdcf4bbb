package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-tagger/internal/server"
	"github.com/ironsheep/image-tagger/internal/web"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [FOLDER]",
		Short: "Serve the HTTP API for an image folder",
		Long: `Serve the JSON API and the raw images of FOLDER (default: the configured
folder) until interrupted. In-flight requests get a short grace period on
shutdown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Addr = addr
			}

			lib, err := c.openLibrary(c.folder(args))
			if err != nil {
				return err
			}
			defer closeLibrary(lib)

			return web.Run(cmd.Context(), c.cfg.Addr, lib)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":5000", "listen address")
	return cmd
}

func (c *CLI) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp [FOLDER]",
		Short: "Run the MCP server over stdin/stdout",
		Long: `Expose FOLDER to MCP clients as tools for listing, tagging and redacting
images. Stdout carries the protocol; logs go to stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := c.openLibrary(c.folder(args))
			if err != nil {
				return err
			}
			defer closeLibrary(lib)

			return server.New(lib, version).Run(cmd.Context())
		},
	}
}
