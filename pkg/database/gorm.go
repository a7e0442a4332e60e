package database

import (
	"fmt"
	"os"
	"path/filepath"

	"hotel-booking/pkg/utils"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitGorm opens the gorm backend selected by config.Driver.
func InitGorm(config utils.DatabaseConfig) (*gorm.DB, func() error, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch config.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(ConnString(config)), cfg)
	case "sqlite":
		path, pathErr := sqlitePath(config.SQLitePath)
		if pathErr != nil {
			return nil, nil, pathErr
		}
		db, err = gorm.Open(sqlite.Open(path), cfg)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", config.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	if config.Driver == "sqlite" {
		// one writer at a time; also keeps a :memory: database alive
		sqlDB.SetMaxOpenConns(1)
	} else if config.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(int(config.MaxConns))
	}

	return db, sqlDB.Close, nil
}

func sqlitePath(path string) (string, error) {
	if path == "" || path == ":memory:" {
		return ":memory:", nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
}
