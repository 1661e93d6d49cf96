package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gage/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gage.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	convey.Convey("Given no configuration sources", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then the defaults apply", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DatasetPath, convey.ShouldEqual, "application_train.csv")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.WatchDataset, convey.ShouldBeFalse)
			convey.So(cfg.ReloadDebounceMS, convey.ShouldEqual, 2000)
			convey.So(cfg.ReloadCooldownSeconds, convey.ShouldEqual, 10)
			convey.So(cfg.MaxSeriesPoints, convey.ShouldEqual, 5000)
			convey.So(cfg.ArchivePath, convey.ShouldBeEmpty)
			convey.So(cfg.ArchiveQueueSize, convey.ShouldEqual, 1024)
		})
	})
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GAGE_ADDR", ":7070")
	t.Setenv("GAGE_DATASET_PATH", "/data/train.csv")
	t.Setenv("GAGE_WATCH_DATASET", "true")
	t.Setenv("GAGE_MAX_SERIES_POINTS", "250")
	t.Setenv("GAGE_ARCHIVE_PATH", "/data/history.db")

	convey.Convey("Given GAGE_-prefixed environment variables", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then they override the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			convey.So(cfg.DatasetPath, convey.ShouldEqual, "/data/train.csv")
			convey.So(cfg.WatchDataset, convey.ShouldBeTrue)
			convey.So(cfg.MaxSeriesPoints, convey.ShouldEqual, 250)
			convey.So(cfg.ArchivePath, convey.ShouldEqual, "/data/history.db")

			convey.Convey("And untouched fields keep their defaults", func() {
				convey.So(cfg.ReloadCooldownSeconds, convey.ShouldEqual, 10)
			})
		})
	})
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
addr: ":8088"
dataset_path: data/application_train.csv
watch_dataset: true
reload_debounce_ms: 500
`)
	t.Setenv("GAGE_CONFIG", path)

	convey.Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then its values layer over the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8088")
			convey.So(cfg.DatasetPath, convey.ShouldEqual, "data/application_train.csv")
			convey.So(cfg.WatchDataset, convey.ShouldBeTrue)
			convey.So(cfg.ReloadDebounceMS, convey.ShouldEqual, 500)
			convey.So(cfg.MaxSeriesPoints, convey.ShouldEqual, 5000)
		})
	})
}

func TestLoadEnvironmentBeatsFile(t *testing.T) {
	path := writeConfigFile(t, `addr: ":8088"`)
	t.Setenv("GAGE_CONFIG", path)
	t.Setenv("GAGE_ADDR", ":6060")

	convey.Convey("Given both a file and an environment override", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then the environment wins", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
		})
	})
}

func TestLoadFailures(t *testing.T) {
	convey.Convey("Given a missing config file", t, func() {
		t.Setenv("GAGE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := config.Load(context.Background())
		convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
	})
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"empty addr", map[string]string{"GAGE_ADDR": ""}},
		{"empty dataset path", map[string]string{"GAGE_DATASET_PATH": ""}},
		{"non-positive series points", map[string]string{"GAGE_MAX_SERIES_POINTS": "0"}},
		{"negative debounce", map[string]string{"GAGE_RELOAD_DEBOUNCE_MS": "-1"}},
		{"non-positive archive queue", map[string]string{"GAGE_ARCHIVE_QUEUE_SIZE": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(context.Background())
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	convey.Convey("Given a fresh default config", t, func() {
		cfg := config.New(context.Background())
		convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
		convey.So(cfg.ArchiveQueueSize, convey.ShouldEqual, 1024)
	})
}
