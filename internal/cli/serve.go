package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photosheet/internal/server"
	"github.com/matzehuels/photosheet/pkg/observability/prom"
	"github.com/matzehuels/photosheet/pkg/pipeline"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the photosheet HTTP API.

Endpoints accept the same options as the CLI, as JSON. Photos are uploaded
as multipart forms with the image in the "photo" field and options in the
"options" field. Options a request leaves out come from the [sheet] section
of the config file.

The cache backend, upload limit, timeouts and /metrics endpoint are set in
the [cache] and [server] config sections, or with PHOTOSHEET_* variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			cat, err := c.catalog()
			if err != nil {
				return err
			}

			ch, err := c.newCache(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(ch, nil, c.Logger)
			defer runner.Close()

			opts := []server.Option{
				server.WithCatalog(cat),
				server.WithDefaults(cfg.Sheet.Options()),
				server.WithLogger(c.Logger),
				server.WithMaxUpload(cfg.Server.MaxUploadBytes()),
			}
			if cfg.Server.Metrics {
				m := prom.New()
				m.Register()
				opts = append(opts, server.WithMetrics(m.Handler()))
			}

			printInfo("Serving on %s", StyleValue.Render(addr))
			srv := server.New(runner, opts...)
			if err := srv.ListenAndServe(cmd.Context(), addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
