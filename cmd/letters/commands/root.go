// Package commands provides the letters CLI commands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baserah/letters/pkg/config"
	"github.com/baserah/letters/pkg/logging"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logging.Logger
}

// NewRootCommand builds the letters command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "letters",
		Short: "Arabic letter-meaning store tools",
		Long: `Arabic letter-meaning store tools

Merges supplementary meanings into the letter store, adds missing letters,
archives store snapshots and generates the letter engine initializer.
File names default to the historical fixed names and can be changed through
flags, a YAML config file or LETTERS_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to YAML config file (default $"+config.EnvConfigFile+" or ./letters.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(mergeCmd(a))
	rootCmd.AddCommand(addMissingCmd(a))
	rootCmd.AddCommand(codegenCmd(a))
	rootCmd.AddCommand(archiveCmd(a))
	rootCmd.AddCommand(validateCmd(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	return nil
}

// stringFlag returns the flag value when it was set, else fallback.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, err := cmd.Flags().GetString(name)
		if err == nil {
			return v
		}
	}
	return fallback
}
