package application

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Thresholds defines the evaluator's trigger thresholds in percent.
type Thresholds struct {
	DeviationPct     float64 `yaml:"deviation_pct"`
	DeviationHighPct float64 `yaml:"deviation_high_pct"`
	WeatherChangePct float64 `yaml:"weather_change_pct"`
	WeatherHighPct   float64 `yaml:"weather_high_pct"`
}

// Config defines readiness engine configuration. Defaults match the
// production policy; a YAML file and env vars tune per deployment.
type Config struct {
	Thresholds          Thresholds `yaml:"thresholds"`
	UploadDeadlineHours int        `yaml:"upload_deadline_hours"`
	DedupeWindowMinutes int        `yaml:"dedupe_window_minutes"`
	SweepEveryMinutes   int        `yaml:"sweep_every_minutes"`
}

// DefaultConfig returns the built-in policy.
func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{
			DeviationPct:     10.0,
			DeviationHighPct: 20.0,
			WeatherChangePct: 15.0,
			WeatherHighPct:   25.0,
		},
		UploadDeadlineHours: 4,
		DedupeWindowMinutes: 60,
		SweepEveryMinutes:   5,
	}
}

// LoadConfig loads config from yaml (READINESS_CONFIG) and env overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("READINESS_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.UploadDeadlineHours = getenvIntDefault("READINESS_UPLOAD_DEADLINE_HOURS", cfg.UploadDeadlineHours)
	cfg.DedupeWindowMinutes = getenvIntDefault("READINESS_DEDUPE_WINDOW_MINUTES", cfg.DedupeWindowMinutes)
	cfg.SweepEveryMinutes = getenvIntDefault("READINESS_SWEEP_EVERY_MINUTES", cfg.SweepEveryMinutes)

	return cfg, cfg.Validate()
}

// Validate checks config invariants.
func (c Config) Validate() error {
	if c.Thresholds.DeviationPct <= 0 || c.Thresholds.WeatherChangePct <= 0 {
		return errors.New("readiness config: thresholds must be positive")
	}
	if c.Thresholds.DeviationHighPct < c.Thresholds.DeviationPct {
		return errors.New("readiness config: deviation high threshold below base")
	}
	if c.Thresholds.WeatherHighPct < c.Thresholds.WeatherChangePct {
		return errors.New("readiness config: weather high threshold below base")
	}
	if c.UploadDeadlineHours <= 0 {
		return errors.New("readiness config: upload deadline must be positive")
	}
	return nil
}

// UploadDeadline returns the deadline window applied on entering READY.
func (c Config) UploadDeadline() time.Duration {
	return time.Duration(c.UploadDeadlineHours) * time.Hour
}

// DedupeWindow returns the trigger-alert suppression window.
func (c Config) DedupeWindow() time.Duration {
	return time.Duration(c.DedupeWindowMinutes) * time.Minute
}

// SweepEvery returns the sweep cadence; zero disables the scheduler.
func (c Config) SweepEvery() time.Duration {
	return time.Duration(c.SweepEveryMinutes) * time.Minute
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
