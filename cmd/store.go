package cmd

import (
	"context"
	"fmt"

	"hotel-booking/internal/data/gormstore"
	"hotel-booking/internal/data/migrations"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/database"
	"hotel-booking/pkg/utils"

	"go.uber.org/zap"
)

// openStore connects the configured backend and brings its schema up to
// date. DB_STORE=pgx uses the SQL migrations (with the overlap exclusion
// constraint); DB_STORE=gorm auto-migrates its models.
func openStore(ctx context.Context, config utils.DatabaseConfig, logger *zap.Logger) (*repository.Repository, func(), error) {
	switch config.Store {
	case "pgx":
		db, err := database.InitDB(ctx, config)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Apply(ctx, db, logger); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Database connected", zap.String("store", "pgx"), zap.String("host", config.Host))
		return repository.NewRepository(db, logger), db.Close, nil

	case "gorm":
		db, closeDB, err := database.InitGorm(config)
		if err != nil {
			return nil, nil, err
		}
		if err := gormstore.AutoMigrate(db.WithContext(ctx)); err != nil {
			_ = closeDB()
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		logger.Info("Database connected", zap.String("store", "gorm"), zap.String("driver", config.Driver))
		return gormstore.New(db, logger), func() { _ = closeDB() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported store %q", config.Store)
}
