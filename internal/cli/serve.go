package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindpack/internal/api"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			runner := c.newRunner(ctx)
			defer runner.Close()

			serverCfg := c.Config.Server
			if addr != "" {
				serverCfg.Addr = addr
			}
			opts := c.Config.PipelineOptions()
			opts.Logger = logger

			printInfo("Serving on %s", serverCfg.Addr)
			return api.NewServer(runner, opts, serverCfg, logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from [server] addr)")
	return cmd
}
