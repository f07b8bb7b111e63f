// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP Server
	Port string `env:"PORT" envDefault:"8080"`

	// Storage
	DataBackend string `env:"DATA_BACKEND" envDefault:"sqlite"`
	DBPath      string `env:"DB_PATH" envDefault:"./data/vikoba.db"`

	// Role tokens
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// AMQP, disabled when the URL is empty
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"vikoba"`

	// Reminders
	ReminderCron string        `env:"REMINDER_CRON" envDefault:"0 9 * * *"`
	ReminderLead time.Duration `env:"REMINDER_LEAD" envDefault:"72h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

var (
	validBackends   = []string{"memory", "sqlite"}
	validLogFormats = []string{"json", "text"}
)

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == "sqlite" && c.DBPath == "" {
		errors = append(errors, "database path cannot be empty when using sqlite backend")
	}

	if c.JWTSecret == "" {
		errors = append(errors, "JWT secret is required")
	}
	if c.TokenTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid token TTL %s: must be positive", c.TokenTTL))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': must use amqp:// or amqps://", c.AMQPURL))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange cannot be empty when AMQP is enabled")
		}
	}

	if _, err := cron.ParseStandard(c.ReminderCron); err != nil {
		errors = append(errors, fmt.Sprintf("invalid reminder schedule '%s': %v", c.ReminderCron, err))
	}
	if c.ReminderLead < 0 {
		errors = append(errors, fmt.Sprintf("invalid reminder lead %s: must not be negative", c.ReminderLead))
	}

	if !slices.Contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
