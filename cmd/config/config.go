package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the inspection engine
type Config struct {
	// Server configuration
	Port int `envconfig:"PORT" default:"10007"`

	// Panel channel configuration. Connections whose name does not start with
	// the prefix are rejected.
	PanelChannelPrefix string `envconfig:"PANEL_CHANNEL_PREFIX" default:"frame-inspector-panel"`

	// Optional URL the one-shot {"setInPage": true} startup signal is posted to.
	// Empty disables the announce.
	AnnounceURL string `envconfig:"ANNOUNCE_URL" default:""`

	// Minimum interval between scroll-driven tooltip repositions, in milliseconds.
	ScrollThrottleMS int `envconfig:"SCROLL_THROTTLE_MS" default:"100"`

	// Log level: debug, info, warn or error
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}
	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// SlogLevel maps the configured log level onto slog's levels.
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

func validate(config *Config) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if config.PanelChannelPrefix == "" {
		return fmt.Errorf("PANEL_CHANNEL_PREFIX is required")
	}
	if config.ScrollThrottleMS < 0 {
		return fmt.Errorf("SCROLL_THROTTLE_MS must not be negative")
	}
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	return nil
}
