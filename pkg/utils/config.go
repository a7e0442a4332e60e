package utils

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

const DefaultConfigFile = ".env"

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Booking  BookingConfig
	Security SecurityConfig
}

type AppConfig struct {
	Name            string
	Port            string
	Debug           bool
	LogPath         string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver     string
	Store      string
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	MaxConns   int32
	SQLitePath string
}

type BookingConfig struct {
	AvailabilityMaxDays int
	LockTimeout         time.Duration
}

// SecurityConfig holds bcrypt hashes of the shared keys. An empty hash
// disables the matching role.
type SecurityConfig struct {
	StaffKeyHash   string
	PaymentKeyHash string
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "hotel-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_STORE", "pgx")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_SQLITE_PATH", "hotel-booking.db")
	viper.SetDefault("AVAILABILITY_MAX_DAYS", 366)
	viper.SetDefault("LOCK_TIMEOUT", "5s")
}

// LoadConfig reads path (a .env file) when it exists, then lets the
// environment override it.
func LoadConfig(path string) (*Config, error) {
	setDefaults()

	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		viper.SetConfigFile(path)
		viper.SetConfigType("env")
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:            viper.GetString("APP_NAME"),
			Port:            viper.GetString("PORT"),
			Debug:           viper.GetBool("DEBUG"),
			LogPath:         viper.GetString("LOG_PATH"),
			ShutdownTimeout: viper.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:     viper.GetString("DB_DRIVER"),
			Store:      viper.GetString("DB_STORE"),
			Host:       viper.GetString("DB_HOST"),
			Port:       viper.GetString("DB_PORT"),
			Name:       viper.GetString("DB_NAME"),
			User:       viper.GetString("DB_USER"),
			Password:   viper.GetString("DB_PASS"),
			MaxConns:   viper.GetInt32("DB_MAX_CONNS"),
			SQLitePath: viper.GetString("DB_SQLITE_PATH"),
		},
		Booking: BookingConfig{
			AvailabilityMaxDays: viper.GetInt("AVAILABILITY_MAX_DAYS"),
			LockTimeout:         viper.GetDuration("LOCK_TIMEOUT"),
		},
		Security: SecurityConfig{
			StaffKeyHash:   viper.GetString("STAFF_KEY_HASH"),
			PaymentKeyHash: viper.GetString("PAYMENT_KEY_HASH"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.New("DB_DRIVER must be postgres or sqlite")
	}
	switch c.Database.Store {
	case "pgx", "gorm":
	default:
		return errors.New("DB_STORE must be pgx or gorm")
	}
	// pgx only speaks PostgreSQL
	if c.Database.Driver == "sqlite" {
		c.Database.Store = "gorm"
	}
	if c.Booking.AvailabilityMaxDays < 1 {
		return errors.New("AVAILABILITY_MAX_DAYS must be positive")
	}
	if c.Booking.LockTimeout <= 0 {
		return errors.New("LOCK_TIMEOUT must be positive")
	}
	return nil
}
