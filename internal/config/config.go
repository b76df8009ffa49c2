package config

import (
	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	Logging     struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Optimizer struct {
		// Backend is the name of the registered native library to drive.
		Backend string `env:"NLOPT_BACKEND" envDefault:"gonum"`
		// MetricsOutput, when set, receives a Prometheus text dump after each run.
		MetricsOutput string `env:"METRICS_OUTPUT"`
		// Seed fixes the random source of the gonum global algorithms.
		Seed int64 `env:"NLOPT_SEED"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	if cfg.Optimizer.Backend == "" {
		cfg.Optimizer.Backend = "gonum"
	}

	return cfg, nil
}
