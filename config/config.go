// Package config loads monitor settings from environment variables and
// manages the JSON ignore-filter file.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// placeholderTopic is the value shipped in .env.example; running with it
// would publish to a topic anyone can guess.
const placeholderTopic = "jules-notify-CHANGE-ME"

// Config holds all settings for the monitor, sourced from the environment.
type Config struct {
	NtfyTopic    string        `env:"NTFY_TOPIC"`
	NtfyServer   string        `env:"NTFY_SERVER"   envDefault:"https://ntfy.sh"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	EmailAction  string        `env:"EMAIL_ACTION"  envDefault:"trash"`
	GmailQuery   string        `env:"GMAIL_QUERY"   envDefault:"from:jules-notifications@google.com is:unread"`
	FiltersPath  string        `env:"FILTERS_PATH"  envDefault:"filters.json"`
	LogLevel     string        `env:"LOG_LEVEL"     envDefault:"info"`
}

// Load parses Config from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings a running monitor cannot do without.
func (c *Config) Validate() error {
	if c.NtfyTopic == "" || c.NtfyTopic == placeholderTopic {
		return fmt.Errorf("NTFY_TOPIC is not configured: set it to a unique, hard-to-guess value " +
			"(example: jules-notify-andrew-x7k2m) and subscribe to it in the ntfy app")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	switch c.EmailAction {
	case "trash", "archive", "read":
	default:
		return fmt.Errorf("EMAIL_ACTION must be one of trash, archive, read; got %q", c.EmailAction)
	}
	return nil
}
