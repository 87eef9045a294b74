package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toolbox/internal/config"
	"github.com/vango-dev/toolbox/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		name   string
		minify bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create toolbox.json",
		Long: `Create toolbox.json with default settings and the asset directory.

Examples:
  toolbox init
  toolbox init site --name shop --minify`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if config.Exists(dir) {
				return errors.New("T142").
					WithDetail(filepath.Join(dir, config.ConfigFileName) + " already exists")
			}
			if name == "" {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return err
				}
				name = filepath.Base(abs)
			}

			cfg := config.New()
			cfg.Name = name
			cfg.Assets.Minify = minify

			if err := os.MkdirAll(filepath.Join(dir, cfg.Assets.Dir), 0755); err != nil {
				return err
			}
			path := filepath.Join(dir, config.ConfigFileName)
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: directory name)")
	cmd.Flags().BoolVar(&minify, "minify", false, "Prefer .min builds")

	return cmd
}
