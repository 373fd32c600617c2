package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration
type Config struct {
	Port      string `env:"PORT" envDefault:"3000"`
	MasterKey string `env:"SEARCHLIGHT_MASTER_KEY"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	DataPath  string `env:"DATA_PATH" envDefault:"./data"`

	// Database configuration
	DatabaseURL   string        `env:"DATABASE_URL"`
	DBMaxConns    int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBConnTimeout time.Duration `env:"DB_CONN_TIMEOUT" envDefault:"30s"`

	// Entity definitions
	EntitiesFile string `env:"ENTITIES_FILE" envDefault:"./entities.json"`

	// Indexing behaviour
	AutoIndex    bool   `env:"AUTO_INDEX" envDefault:"false"`
	DefaultIndex string `env:"DEFAULT_INDEX" envDefault:"searchlight"`

	// Query behaviour
	SearchParam string `env:"SEARCH_PARAM" envDefault:"q"`

	// Debug exposes the search-backend failure cause in degraded responses.
	// Keep off in production, the cause string leaks backend internals.
	Debug bool `env:"DEBUG" envDefault:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequiresAuth returns true if authentication is enabled
func (c *Config) RequiresAuth() bool {
	return c.MasterKey != ""
}
