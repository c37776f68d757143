// Package commands implements the busdump CLI.
package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds the state shared by every command of one invocation.
type app struct {
	cfgFile  string
	logLevel string
	iface    string
	member   string
	cfg      Config
	logger   zerolog.Logger
}

// Execute runs the busdump CLI with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "busdump",
		Short: "Inspect recorded bus message captures",
		Long: `busdump reads captures of bus messages and prints or summarizes them.

Use "busdump [command] --help" for more information about a command.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "TOML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level, overrides the config file (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&a.iface, "interface", "", "Only messages with this interface")
	root.PersistentFlags().StringVar(&a.member, "member", "", "Only messages with this member")

	root.AddCommand(newListCmd(a))
	root.AddCommand(newStatsCmd(a))
	root.AddCommand(newPackCmd(a))
	root.CompletionOptions.DisableDefaultCmd = true

	return root
}

// setup loads the config file, applies flag overrides and creates the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(a.cfgFile)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.iface != "" {
		cfg.Filter.Interface = a.iface
	}
	if a.member != "" {
		cfg.Filter.Member = a.member
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.logger.Debug().Str("config", a.cfgFile).Str("command", cmd.Name()).Msg("configuration loaded")

	return nil
}
