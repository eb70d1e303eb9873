package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pfrederiksen/tw-conquers/internal/config"
	"github.com/pfrederiksen/tw-conquers/internal/logger"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagLogLevel string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tw-conquers",
		Short: "Forward TribalWars conquers to a Telegram chat",
		Long: `A Telegram bot that polls a twstats conquer page, picks out conquers
matching the keywords chosen in chat and posts them to the subscribed channel.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(newRunCmd(), newCheckCmd())

	return cmd
}

// loadConfig reads the config file and environment, then applies the global flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}

	return cfg, nil
}

// setupLogger installs the default logger at the configured level, writing to stderr
func setupLogger(cfg *config.Config) error {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, os.Stderr))
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
