// Package config loads and validates the process environment into a
// typed struct using caarlos0/env and go-playground/validator.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config is the complete set of environment-sourced settings sacristy
// needs beyond what PocketBase itself reads from pb_data.
type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"required,oneof=debug info warn error"`

	// RedisURL, when set, backs the (year, month) generation lock with a
	// Redis-based distributed mutex instead of an in-process one. Only
	// meaningful once more than one app instance can run concurrently.
	RedisURL string `env:"REDIS_URL"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9091"`

	SlackBotToken   string `env:"SLACK_BOT_TOKEN"`
	SlackChannel    string `env:"SLACK_CHANNEL"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM" validate:"required_if=Env production,required_if=Env staging"`

	// CoordinatorEmail receives the conflict and fairness-digest emails
	// Throttled.SendEmail dispatches alongside the Slack notifications.
	CoordinatorEmail string `env:"COORDINATOR_EMAIL"`

	ArchiveAfterMonths int `env:"ARCHIVE_AFTER_MONTHS" envDefault:"13" validate:"min=1"`
}

// Load parses and validates the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SlogLevel converts LogLevel to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
