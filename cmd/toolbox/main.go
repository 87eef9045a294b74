package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toolbox/internal/config"
	"github.com/vango-dev/toolbox/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "toolbox",
		Short: "Register, resolve and render page assets",
		Long: `Toolbox manages the script and style tags of server-rendered pages.

Resources are declared in toolbox.json. Each one resolves to a URL under
the asset base URL, preferring ".min" builds when minification is on, and
is rendered with its dependencies first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to toolbox.json (default: search upward from the working directory)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error (default from toolbox.json)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json (default from toolbox.json)")

	rootCmd.AddCommand(
		initCmd(),
		resolveCmd(flags),
		renderCmd(flags),
		buildCmd(flags),
		publishCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// load reads the configuration and applies the logging flags to it.
func (f *globalFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the slog handler selected by cfg.Log. Logs go to w so
// they never mix with command output.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch cfg.Log.Format {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, errors.New("T141").WithDetail(fmt.Sprintf("unknown log format %q", cfg.Log.Format))
	}
	return slog.New(h), nil
}
