package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"webtemplate-backend/internal/app"
	"webtemplate-backend/internal/config"
	"webtemplate-backend/internal/logger"
	"webtemplate-backend/internal/webtemplate"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath    string
	developerMode bool
	verbose       bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "wtctl",
		Short: "Manage web templates",
		Long: `wtctl renders, exports and imports web templates against the
configured database and module tree.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: app.yaml)")
	root.PersistentFlags().BoolVar(&opts.developerMode, "developer-mode", false, "enable developer mode regardless of config")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newImportCmd(opts))
	return root
}

// open loads config and builds the document service. Logs go to stderr so
// stdout stays clean for command output.
func (o *globalOptions) open(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.developerMode {
		cfg.DeveloperMode = true
	}

	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	}
	logger.InitWithWriter(level, os.Stderr)

	return app.New(ctx, cfg)
}

func execContext(cfg *config.Config) webtemplate.ExecContext {
	return webtemplate.ExecContext{DeveloperMode: cfg.DeveloperMode}
}
