// Package config loads runtime settings from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds the runtime settings. Every field can be set through a
// COFFEEPOS_ prefixed environment variable.
type Config struct {
	// DBPath is the SQLite database file. ":memory:" gives an
	// ephemeral database.
	DBPath string `envconfig:"DB_PATH" default:"coffeepos.db"`
	// LogLevel is a logrus level name such as debug, info, or warn.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// LogJSON switches log output from text to JSON.
	LogJSON bool `envconfig:"LOG_JSON" default:"false"`
	// Seed loads sample users, categories, and products on startup if
	// the database is empty.
	Seed bool `envconfig:"SEED" default:"false"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("coffeepos", &cfg); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}
