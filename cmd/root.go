package cmd

import (
	"fmt"
	"os"

	"hotel-booking/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const flagConfig = "config"

// NewRootCommand builds the hotel-booking CLI: serve and migrate.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hotel-booking",
		Short:         "Hotel reservation and availability service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(flagConfig, utils.DefaultConfigFile, "path to a .env config file")

	root.AddCommand(newServeCommand(), newMigrateCommand())
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hotel-booking: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads config and the logger shared by every subcommand.
func bootstrap(cmd *cobra.Command) (*utils.Config, *zap.Logger, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, nil, err
	}

	config, err := utils.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := utils.InitLogger(config.App)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v, falling back to stdout\n", err)
		if logger, err = zap.NewProduction(); err != nil {
			return nil, nil, err
		}
	}
	return config, logger, nil
}
