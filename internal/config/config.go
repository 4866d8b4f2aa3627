// Package config loads service settings from CRATEPACK_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/piwi3910/CratePack/internal/logging"
	"github.com/piwi3910/CratePack/internal/model"
)

type Config struct {
	Environment string `env:"CRATEPACK_ENV" envDefault:"development"`
	DataDir     string `env:"CRATEPACK_DATA_DIR"`
	HTTP        struct {
		Port            int           `env:"CRATEPACK_HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"CRATEPACK_HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"CRATEPACK_HTTP_WRITE_TIMEOUT" envDefault:"60s"`
		RequestTimeout  time.Duration `env:"CRATEPACK_HTTP_REQUEST_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"CRATEPACK_HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"CRATEPACK_LOG_LEVEL" envDefault:"info"`
		Format string `env:"CRATEPACK_LOG_FORMAT" envDefault:"console"`
		Output string `env:"CRATEPACK_LOG_OUTPUT" envDefault:"stderr"`
	}
	Optimizer struct {
		Strategy    string        `env:"CRATEPACK_STRATEGY" envDefault:"bestfit-ems"`
		Rotations   string        `env:"CRATEPACK_ROTATIONS" envDefault:"xyz"`
		Population  int           `env:"CRATEPACK_POPULATION" envDefault:"50"`
		Elite       int           `env:"CRATEPACK_ELITE" envDefault:"10"`
		Generations int           `env:"CRATEPACK_GENERATIONS" envDefault:"100"`
		Workers     int           `env:"CRATEPACK_WORKERS" envDefault:"0"`
		Threaded    bool          `env:"CRATEPACK_THREADED" envDefault:"true"`
		EvalTimeout time.Duration `env:"CRATEPACK_EVAL_TIMEOUT" envDefault:"3m"`
		MaxJobs     int           `env:"CRATEPACK_MAX_JOBS" envDefault:"16"`
	}
}

// Load parses the environment and fills in derived defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Environment == "development" && os.Getenv("CRATEPACK_LOG_LEVEL") == "" {
		cfg.Logging.Level = "debug"
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".cratepack")
	}

	if _, err := cfg.Settings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoggingConfig converts the logging section for logging.New.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// Settings returns optimizer defaults for requests that leave them unset.
func (c *Config) Settings() (model.Settings, error) {
	s := model.DefaultSettings()

	strategy := model.Strategy(c.Optimizer.Strategy)
	if !strategy.Valid() {
		return s, fmt.Errorf("CRATEPACK_STRATEGY: unknown strategy %q", c.Optimizer.Strategy)
	}
	rot, err := model.ParseRotationMask(c.Optimizer.Rotations)
	if err != nil {
		return s, fmt.Errorf("CRATEPACK_ROTATIONS: %w", err)
	}

	s.Strategy = strategy
	s.Rotations = rot
	s.PopulationSize = c.Optimizer.Population
	s.EliteCount = c.Optimizer.Elite
	s.Generations = c.Optimizer.Generations
	s.Workers = c.Optimizer.Workers
	s.Threaded = c.Optimizer.Threaded
	return s, nil
}
