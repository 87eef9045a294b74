package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toolbox/internal/build"
)

func buildCmd(flags *globalFlags) *cobra.Command {
	var (
		output string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write the asset manifest",
		Long: `Scan the asset directory and write a manifest mapping every
script and style to the file that should be served for it.

The manifest is written to assets.manifest from toolbox.json, or to
manifest.json in the asset directory.

Examples:
  toolbox build
  toolbox build --output dist/manifest.json
  toolbox build --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			b := build.New(cfg, build.Options{
				Output: output,
				DryRun: dryRun,
				OnProgress: func(step string) {
					logger.Debug(step)
				},
			})
			result, err := b.Build(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range result.Stale {
				logger.Warn("minified build is older than its source", "file", f)
			}
			for _, f := range result.Missing {
				fmt.Fprintf(out, "  no minified build: %s\n", f)
			}
			verb := "Wrote"
			if dryRun {
				verb = "Would write"
			}
			fmt.Fprintf(out, "%s %s: %d sources, %d minified (%s)\n",
				verb, result.Path, len(result.Manifest), result.Minified, result.Duration.Round(time.Microsecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Manifest path (default from toolbox.json)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Scan without writing the manifest")

	return cmd
}
