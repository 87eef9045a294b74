package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/vango-dev/toolbox/pkg/assets"
)

func resolveCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [file]...",
		Short: "Print the URL each asset file resolves to",
		Long: `Print the kind and resolved URL of each file.

With no arguments every resource declared in toolbox.json is resolved.
Files that are neither .js nor .css are reported as unknown.

Examples:
  toolbox resolve
  toolbox resolve js/app.js css/theme.css`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			site, err := newSite(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			table := uitable.New()
			table.MaxColWidth = 80
			if len(args) == 0 {
				for _, d := range cfg.Resources {
					res, ok := assets.Generate(site, d.ID, d.File, d.Options()...)
					addResolved(table, d.ID, d.File, res, ok)
				}
			}
			for _, file := range args {
				res, ok := assets.Generate(site, file, file)
				addResolved(table, file, file, res, ok)
			}
			if len(table.Rows) == 0 {
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}
	return cmd
}

func addResolved(table *uitable.Table, id, file string, res assets.Resource, ok bool) {
	if !ok {
		table.AddRow(id, assets.KindUnknown, file, "-")
		return
	}
	table.AddRow(id, res.Kind(), file, res.URL())
}
