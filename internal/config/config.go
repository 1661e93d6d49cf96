// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error kinds.
package config

import (
	"context"
)

// Default configuration values.
const (
	defaultAddr             = ":9080"
	defaultDatasetPath      = "application_train.csv"
	defaultReloadDebounceMS = 2000
	defaultReloadCooldownS  = 10
	defaultMaxSeriesPoints  = 5000
	defaultArchiveQueueSize = 1024
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetPath locates the application_train CSV to load.
	DatasetPath string `koanf:"dataset_path"`

	// WatchDataset enables reloading when the dataset file changes on disk.
	WatchDataset bool `koanf:"watch_dataset"`

	// ReloadDebounceMS is the quiet period after a file change before the
	// watcher triggers a reload.
	ReloadDebounceMS int `koanf:"reload_debounce_ms"`

	// ReloadCooldownSeconds rate-limits POST /api/reload.
	ReloadCooldownSeconds int `koanf:"reload_cooldown_seconds"`

	// MaxSeriesPoints caps the dataviz scatter sample size.
	MaxSeriesPoints int `koanf:"max_series_points"`

	// ArchivePath locates the SQLite analysis history. Empty disables the
	// archive entirely.
	ArchivePath string `koanf:"archive_path"`

	// ArchiveQueueSize bounds the in-memory archive write queue.
	ArchiveQueueSize int `koanf:"archive_queue_size"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  defaultAddr,
		DatasetPath:           defaultDatasetPath,
		WatchDataset:          false,
		ReloadDebounceMS:      defaultReloadDebounceMS,
		ReloadCooldownSeconds: defaultReloadCooldownS,
		MaxSeriesPoints:       defaultMaxSeriesPoints,
		ArchivePath:           "",
		ArchiveQueueSize:      defaultArchiveQueueSize,
	}
}
