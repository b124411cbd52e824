// Package config reads process settings from the environment and game rules from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mcdev12/matchday/go/internal/dbconfig"
	"github.com/rs/zerolog/log"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the process configuration of the matchday server
type Config struct {
	Port        string          `env:"PORT" envDefault:"8080"`
	LogLevel    string          `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	Storage     string          `env:"STORAGE_DRIVER" envDefault:"memory" validate:"oneof=memory sqlite postgres"`
	SQLitePath  string          `env:"SQLITE_PATH" envDefault:"matchday.db"`
	Database    dbconfig.Config `envPrefix:"DB_"`
	CatalogPath string          `env:"CATALOG_PATH" envDefault:"go/internal/assets/catalog.yaml"`
	RulesPath   string          `env:"RULES_PATH"`

	// Empty disables the standings cache.
	RedisURL     string        `env:"REDIS_URL"`
	StandingsTTL time.Duration `env:"STANDINGS_TTL" envDefault:"10m"`

	// Empty disables event publishing.
	NATSURL string `env:"NATS_URL"`

	SweeperWorkers int           `env:"SWEEPER_WORKERS" envDefault:"4" validate:"min=1"`
	SweeperOffset  time.Duration `env:"SWEEPER_OFFSET" envDefault:"5m"`

	FeedAddr  string `env:"FEED_ADDR" envDefault:":8090"`
	RelayAddr string `env:"RELAY_ADDR" envDefault:":8091"`

	Rules Rules `env:"-"`
}

// Load reads .env when present, then the environment, then the rules file if one is named.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.Rules = DefaultRules()
	if cfg.RulesPath != "" {
		data, err := os.ReadFile(cfg.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read rules %s: %w", cfg.RulesPath, err)
		}
		if cfg.Rules, err = ParseRules(data); err != nil {
			return nil, err
		}
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
