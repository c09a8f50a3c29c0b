// Package main provides the CLI entry point for sheetpipe.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/config"
)

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	rootCmd := &cobra.Command{
		Use:   "sheetpipe",
		Short: "Convert spreadsheets to and from line-delimited JSON",
		Long: `sheetpipe reads .xls, .xlsx and .xlsb workbooks and streams their sheets
and cells as JSON records, one per line. It also builds .xlsx workbooks from
JSON commands read on standard input.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd, &flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default: $"+config.EnvPath+" or ~/.config/sheetpipe/config.toml)")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "console", "Log format: console or json")

	rootCmd.AddCommand(newReadCmd(), newWriteCmd())
	return rootCmd
}

type configKey struct{}

// setup loads the config file and puts the config and the logger on the
// command context.
func setup(cmd *cobra.Command, flags *rootFlags) error {
	cfg, undecoded, err := config.Load(config.Path(flags.configPath))
	if err != nil {
		return err
	}
	level := pick(cmd.Flags(), "log-level", flags.logLevel, cfg.LogLevel)
	format := pick(cmd.Flags(), "log-format", flags.logFormat, cfg.LogFormat)
	log, err := newLogger(cmd.ErrOrStderr(), level, format)
	if err != nil {
		return err
	}
	for _, key := range undecoded {
		log.Warn().Str("key", key).Msg("unknown config key")
	}

	ctx := log.WithContext(cmd.Context())
	cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
	return nil
}

func configFrom(ctx context.Context) config.Config {
	if cfg, ok := ctx.Value(configKey{}).(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// pick returns the flag value when the flag was set, else the config value.
func pick[T any](flags *pflag.FlagSet, name string, flag, cfg T) T {
	if flags.Changed(name) {
		return flag
	}
	return cfg
}
