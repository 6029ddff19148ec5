package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/risor-io/shparse/cache"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// app holds the state shared by every command.
type app struct {
	v      *viper.Viper
	stdin  io.Reader
	logger zerolog.Logger
	cache  *cache.Cache
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), stdin: os.Stdin, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "shparse",
		Short:         "Parse, inspect and check shell scripts",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetIn(os.Stdin)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.shparse.yaml)")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	flags.Int("cache-size", cache.DefaultSize, "number of parse results to cache")
	a.v.BindPFlag("no-color", flags.Lookup("no-color"))
	a.v.BindPFlag("log-level", flags.Lookup("log-level"))
	a.v.BindPFlag("cache-size", flags.Lookup("cache-size"))

	root.AddCommand(
		a.parseCmd(),
		a.tokensCmd(),
		a.fmtCmd(),
		a.checkCmd(),
		a.schemaCmd(),
	)
	return root
}

// init loads the config file and environment, then builds the logger and
// the parse cache.
func (a *app) init(cmd *cobra.Command) error {
	a.stdin = cmd.InOrStdin()
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	} else {
		home, err := homedir.Dir()
		if err == nil {
			a.v.AddConfigPath(home)
			a.v.SetConfigName(".shparse")
			a.v.SetConfigType("yaml")
			if err := a.v.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return fmt.Errorf("reading config: %w", err)
				}
			}
		}
	}
	a.v.SetEnvPrefix("shparse")
	a.v.AutomaticEnv()

	if a.v.GetBool("no-color") || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	logger, err := newLogger(cmd.ErrOrStderr(), a.v.GetString("log-level"), color.NoColor)
	if err != nil {
		return err
	}
	a.logger = logger
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug().Str("path", used).Msg("using config file")
	}

	a.cache, err = cache.New(
		cache.WithSize(a.v.GetInt("cache-size")),
		cache.WithLogger(a.logger.With().Str("component", "cache").Logger()),
	)
	return err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
}
