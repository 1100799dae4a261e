// Package config loads runtime configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	// DatabaseDSN selects the postgres store. Empty runs on the in-memory
	// store, which is only suitable for local development.
	DatabaseDSN string `yaml:"database_dsn"`

	// WebhookURL, when set, receives JSON summaries of project lifecycle
	// events.
	WebhookURL string `yaml:"webhook_url"`

	// SweepSchedule is the cron schedule of the deadline sweeper.
	SweepSchedule string `yaml:"sweep_schedule"`

	// QueueWorkers and QueueBuffer size the in-process fan-out queue.
	QueueWorkers int `yaml:"queue_workers"`
	QueueBuffer  int `yaml:"queue_buffer"`

	// OpsListenAddr serves health and Prometheus metrics.
	OpsListenAddr string `yaml:"ops_listen_addr"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		SweepSchedule: "@every 1h",
		QueueWorkers:  2,
		QueueBuffer:   256,
		OpsListenAddr: ":9090",
	}
}

// Load reads the optional YAML file at path, then applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env and defaults
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = "@every 1h"
	}
	if cfg.OpsListenAddr == "" {
		cfg.OpsListenAddr = ":9090"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
	if v := os.Getenv("SWEEP_SCHEDULE"); v != "" {
		cfg.SweepSchedule = v
	}
	if v := os.Getenv("QUEUE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueWorkers = n
		}
	}
	if v := os.Getenv("QUEUE_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueBuffer = n
		}
	}
	if v := os.Getenv("OPS_LISTEN_ADDR"); v != "" {
		cfg.OpsListenAddr = v
	}
}
