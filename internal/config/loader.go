package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if GAGE_CONFIG is set
//  3. env (prefix GAGE_)
//
// A .env file in the working directory, if present, is read into the
// environment first.
func Load(ctx context.Context) (*Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("GAGE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GAGE_ADDR, GAGE_DATASET_PATH, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("GAGE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "gage_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatasetPath == "":
		return fmt.Errorf("%w: dataset_path must not be empty", ErrInvalidConfig)
	case c.MaxSeriesPoints <= 0:
		return fmt.Errorf("%w: max_series_points must be positive", ErrInvalidConfig)
	case c.ReloadDebounceMS < 0:
		return fmt.Errorf("%w: reload_debounce_ms must not be negative", ErrInvalidConfig)
	case c.ArchiveQueueSize <= 0:
		return fmt.Errorf("%w: archive_queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
