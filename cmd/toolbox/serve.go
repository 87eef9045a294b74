package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toolbox"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		devMode bool
		addr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the asset directory with a preview page",
		Long: `Start an HTTP server for the asset directory.

Every path renders a preview page with all declared resources enqueued.
Paths under the admin prefix include admin-only resources. Metrics are
served on /metrics.

With --dev, caching is disabled and browsers reload when a file in the
asset directory changes.

Examples:
  toolbox serve
  toolbox serve --dev --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.ServerAddress()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []toolbox.AppOption{
				toolbox.WithLogger(logger),
				toolbox.WithDevMode(devMode),
			}
			remote, err := remoteChecker(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if remote != nil {
				opts = append(opts, toolbox.WithChecker(remote), toolbox.WithBasePath(""))
			}

			app, err := toolbox.NewApp(cfg, opts...)
			if err != nil {
				return err
			}
			app.Page("/*", previewPage(cfg.Name))

			return app.Run(ctx, addr)
		},
	}

	cmd.Flags().BoolVar(&devMode, "dev", false, "Disable caching and reload browsers on change")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from toolbox.json)")

	return cmd
}
