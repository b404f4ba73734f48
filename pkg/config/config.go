package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Bus selectors accepted in the config file.
const (
	BusSystem  = "system"
	BusSession = "session"
)

// maxHistorySize bounds the event history ring.
const maxHistorySize = 1024 * 1024

// Config holds application configuration
type Config struct {
	Bus      string        `yaml:"bus" default:"system"`
	HCI      int32         `yaml:"hci" default:"0"`
	LogLevel string        `yaml:"log_level" default:"info"`
	Console  ConsoleConfig `yaml:"console"`
}

// ConsoleConfig holds the interactive console settings.
type ConsoleConfig struct {
	Color       bool   `yaml:"color" default:"true"`
	HistorySize uint32 `yaml:"history_size" default:"1024"`
	Prompt      string `yaml:"prompt" default:"floss> "`
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "flossctl", "config.yaml")
}

// Default returns a Config with default values.
func Default() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.Bus {
	case BusSystem, BusSession:
	default:
		return fmt.Errorf("bus must be %q or %q, got %q", BusSystem, BusSession, c.Bus)
	}

	if c.HCI < 0 {
		return fmt.Errorf("hci must be >= 0, got %d", c.HCI)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if c.Console.HistorySize == 0 {
		return fmt.Errorf("console.history_size must be > 0")
	}
	if c.Console.HistorySize > maxHistorySize {
		return fmt.Errorf("console.history_size must be <= %d, got %d", maxHistorySize, c.Console.HistorySize)
	}

	return nil
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
