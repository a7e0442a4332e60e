package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"hotel-booking/internal/wire"
	"hotel-booking/pkg/metrics"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const flagPort = "port"

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag("PORT", cmd.Flags().Lookup(flagPort))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("Starting application",
				zap.String("port", config.App.Port),
				zap.Bool("debug", config.App.Debug),
				zap.String("db_driver", config.Database.Driver),
				zap.String("db_store", config.Database.Store),
			)

			if config.Security.StaffKeyHash == "" {
				logger.Warn("STAFF_KEY_HASH is not set, staff routes will reject every caller")
			}
			if config.Security.PaymentKeyHash == "" {
				logger.Warn("PAYMENT_KEY_HASH is not set, payment outcomes can only be recorded by staff")
			}

			repo, closeStore, err := openStore(ctx, config.Database, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer closeStore()

			app := wire.Wiring(repo, config, logger, metrics.New())
			return APIServer(ctx, app.Router, config.App, logger)
		},
	}
	cmd.Flags().String(flagPort, "8080", "HTTP listen port")
	return cmd
}
