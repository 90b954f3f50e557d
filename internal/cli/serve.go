package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinreport/internal/server"
	"github.com/matzehuels/kinreport/pkg/observability/prom"
)

// serveCommand creates the serve command: the HTTP API over the same
// runner the CLI uses.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve starts the HTTP API. Renders, inspections and history are exposed
under /v1, liveness under /healthz and Prometheus metrics under /metrics.

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(context.WithoutCancel(ctx))

			var m *prom.Metrics
			if !noMetrics {
				m = prom.New()
				m.Install()
			}

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			srv := server.New(server.Options{
				Renderer: runner,
				History:  runner.History,
				Metrics:  m,
				Logger:   c.Logger,
				Source:   c.Config.Render.Source,
				Scale:    c.Config.Render.Scale,
			})
			s := c.Config.Server
			return srv.ListenAndServe(ctx, addr, s.ReadTimeout.D(), s.WriteTimeout.D(), s.ShutdownTimeout.D())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable /metrics and request metrics")

	return cmd
}
