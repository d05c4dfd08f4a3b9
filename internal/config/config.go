package config

import (
	"fmt"

	"github.com/caarlos0/env/v7"
	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Capacity    CapacityConfig
	Logging     LoggingConfig
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// CapacityConfig carries the process-wide capacity ceilings. MaxEvents bounds
// the total number of events; MaxRegistrations bounds registrants per event
// (one global setting shared by every event).
type CapacityConfig struct {
	MaxEvents        int `env:"EVENTS_MAX_CAPACITY" envDefault:"1000"`
	MaxRegistrations int `env:"USERS_MAX_CAPACITY" envDefault:"100"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads configuration from the environment, after loading a .env file
// if one is present in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Database.Name == "" {
		return Config{}, fmt.Errorf("DB is required")
	}
	if cfg.Capacity.MaxEvents <= 0 {
		return Config{}, fmt.Errorf("EVENTS_MAX_CAPACITY must be positive")
	}
	if cfg.Capacity.MaxRegistrations <= 0 {
		return Config{}, fmt.Errorf("USERS_MAX_CAPACITY must be positive")
	}
	return cfg, nil
}

// DSN builds a keyword/value connection string for pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}
