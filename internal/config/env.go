package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides are deployment settings that may come from the environment
// instead of the config file. Empty or zero means unset.
type envOverrides struct {
	DSN       string `env:"HEXED_DATABASE_DSN"`
	LogLevel  string `env:"HEXED_LOG_LEVEL"`
	LogFormat string `env:"HEXED_LOG_FORMAT"`
	Locale    string `env:"HEXED_LOCALE"`
	Generator string `env:"HEXED_GENERATOR"`
	Seed      int64  `env:"HEXED_SEED"`
}

// ApplyEnv overlays HEXED_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if ov.DSN != "" {
		cfg.Database.DSN = ov.DSN
	}
	if ov.LogLevel != "" {
		cfg.Logging.Level = ov.LogLevel
	}
	if ov.LogFormat != "" {
		cfg.Logging.Format = ov.LogFormat
	}
	if ov.Locale != "" {
		cfg.Server.Locale = ov.Locale
	}
	if ov.Generator != "" {
		cfg.Match.Generator = ov.Generator
	}
	if ov.Seed != 0 {
		cfg.Match.Seed = ov.Seed
	}
	return nil
}
