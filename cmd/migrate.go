package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			_, closeStore, err := openStore(cmd.Context(), config.Database, logger)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			closeStore()

			logger.Info("Schema is up to date")
			return nil
		},
	}
}
