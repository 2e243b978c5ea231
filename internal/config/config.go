package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the daemon.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Blocklist BlocklistConfig
}

// ServerConfig holds HTTP server configuration. The daemon serves a single
// desktop user, so it binds loopback by default.
type ServerConfig struct {
	Host string `env:"BLOCKY_HOST" envDefault:"127.0.0.1"`
	Port int    `env:"BLOCKY_PORT" envDefault:"8377"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver string `env:"BLOCKY_DB_DRIVER" envDefault:"sqlite3"`
	DSN    string `env:"BLOCKY_DB_DSN" envDefault:"data/blocky.db"`
}

// BlocklistConfig holds blocklist recomputation configuration.
type BlocklistConfig struct {
	// RefreshCron is a standard 5-field cron spec controlling how often
	// schedules are re-evaluated against the clock.
	RefreshCron string `env:"BLOCKY_REFRESH_CRON" envDefault:"* * * * *"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.Database); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if err := env.Parse(&cfg.Blocklist); err != nil {
		return nil, fmt.Errorf("parsing blocklist config: %w", err)
	}

	return cfg, nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q (use sqlite3 or postgres)", c.Database.Driver)
	}

	if _, err := cron.ParseStandard(c.Blocklist.RefreshCron); err != nil {
		return fmt.Errorf("invalid BLOCKY_REFRESH_CRON: %w", err)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid BLOCKY_PORT %d", c.Server.Port)
	}

	return nil
}
