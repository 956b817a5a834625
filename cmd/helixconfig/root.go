package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/godamri/helix-config/app"
	"github.com/godamri/helix-config/database"
	"github.com/godamri/helix-config/log"
	"github.com/godamri/helix-config/server"
	"github.com/godamri/helix-config/source"
)

// AppConfig is the configuration of the service run by serve.
type AppConfig struct {
	HTTP server.Config
	DB   database.Config
}

type rootFlags struct {
	dir     string
	name    string
	profile string
	defines []string
}

// env carries what every subcommand needs once flags and environment are read.
type env struct {
	logger *slog.Logger
	source source.Options
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	e := &env{}

	cmd := &cobra.Command{
		Use:   "helixconfig",
		Short: "Load, validate and inspect layered application configuration",
		Long: `helixconfig reads <name>.conf (or .yaml/.toml) from the config directory,
overlays the active profile, secret files and -D overrides, and binds the
result into the service configuration.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init(cmd, flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.dir, "dir", "", "config directory (default $CONFIG_DIR or .)")
	cmd.PersistentFlags().StringVar(&flags.name, "name", "", "base file name without extension (default $CONFIG_NAME or application)")
	cmd.PersistentFlags().StringVar(&flags.profile, "profile", "", "active profile (default $CONFIG_PROFILE)")
	cmd.PersistentFlags().StringArrayVarP(&flags.defines, "define", "D", nil, "override a key, e.g. -D db.pool-size=20")

	cmd.AddCommand(newCheckCmd(e), newRenderCmd(e), newServeCmd(e))
	return cmd
}

func (e *env) init(cmd *cobra.Command, flags rootFlags) error {
	boot, err := app.NewEnvLoader().LoadBootstrap()
	if err != nil {
		return err
	}
	e.logger = log.NewWithWriter(boot.Log, cmd.ErrOrStderr())

	opts := boot.Source
	if cmd.Flags().Changed("dir") {
		opts.Dir = flags.dir
	}
	if cmd.Flags().Changed("name") {
		opts.Name = flags.name
	}
	if cmd.Flags().Changed("profile") {
		opts.Profile = flags.profile
	}
	overrides, err := source.ParseOverrides(flags.defines)
	if err != nil {
		return err
	}
	opts.Overrides = overrides
	opts.Logger = e.logger
	e.source = opts
	return nil
}
