// Package cli wires the rsiwatch commands.
package cli

import (
	"fmt"
	"os"

	"RSIWatch/internal/config"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

// RootOptions are the persistent flags shared by every command.
type RootOptions struct {
	ConfigPath string
	Symbol     string
}

// NewRootCmd builds the rsiwatch command tree.
func NewRootCmd() *cobra.Command {
	ro := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "rsiwatch",
		Short:         "RSI dashboard for a single asset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&ro.ConfigPath, "config", "", "config file (default $CONFIG_PATH or "+defaultConfigPath+")")
	cmd.PersistentFlags().StringVar(&ro.Symbol, "symbol", "", "ticker symbol, overrides data_source.symbol")

	cmd.AddCommand(
		newServeCmd(ro),
		newReportCmd(ro),
		newConfigCmd(ro),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig resolves the config path, applies flag overrides and validates.
func (ro *RootOptions) loadConfig() (*config.Config, error) {
	path := ro.ConfigPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if ro.Symbol != "" {
		cfg.DataSource.Symbol = ro.Symbol
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}
