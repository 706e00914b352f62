package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type RetryConfig struct {
	MaxAttempts int     `yaml:"max_attempts"`
	DelaysMs    []int64 `yaml:"delays_ms"`
	TimeoutMs   int64   `yaml:"timeout_ms"`
}

type HealthConfig struct {
	WindowDays       int     `yaml:"window_days"`
	RefreshSeconds   int     `yaml:"refresh_seconds"`
	SuccessRateFloor float64 `yaml:"success_rate_floor"`
	EmptyRateCeiling float64 `yaml:"empty_rate_ceiling"`
}

type SimulatorConfig struct {
	FailureAlertThreshold float64 `yaml:"failure_alert_threshold"`
	AlertURL              string  `yaml:"alert_url"`
}

// Config is built once at startup and passed by reference to each
// component. Nothing reads the process environment.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Retry     RetryConfig     `yaml:"retry"`
	Health    HealthConfig    `yaml:"health"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8000"},
		Retry: RetryConfig{
			MaxAttempts: 2,
			DelaysMs:    []int64{2000, 4000},
			TimeoutMs:   25000,
		},
		Health: HealthConfig{
			WindowDays:       7,
			RefreshSeconds:   30,
			SuccessRateFloor: 90,
			EmptyRateCeiling: 80,
		},
		Simulator: SimulatorConfig{
			FailureAlertThreshold: 0.02,
		},
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Missing fields keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	if len(cfg.Retry.DelaysMs) == 0 {
		cfg.Retry.DelaysMs = Default().Retry.DelaysMs
	}
	return cfg, nil
}
