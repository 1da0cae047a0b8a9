// Package config loads assistant configuration from YAML files with
// environment variable expansion.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure for the assistant.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Chat     ChatConfig     `yaml:"chat"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ProviderConfig selects and configures the completion backend.
type ProviderConfig struct {
	// Name is "openai" or "demo".
	Name   string `yaml:"name"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// StorageConfig configures chat persistence.
type StorageConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// AuthConfig configures session authentication. An empty JWT secret
// disables authentication; all callers are treated as logged out and
// chats are not persisted.
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenExpiry time.Duration `yaml:"token_expiry"`
}

// ChatConfig tunes the dispatch engine and tool handlers.
type ChatConfig struct {
	// SimulatedLatency delays tool results and confirmation stages to
	// mimic real execution. Zero disables the delay.
	SimulatedLatency time.Duration `yaml:"simulated_latency"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Provider.Name == "" {
		if cfg.Provider.APIKey != "" {
			cfg.Provider.Name = "openai"
		} else {
			cfg.Provider.Name = "demo"
		}
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = "gpt-4o"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "nicolette.db"
	}
	if cfg.Auth.TokenExpiry == 0 {
		cfg.Auth.TokenExpiry = 24 * time.Hour
	}
	if cfg.Chat.SimulatedLatency == 0 {
		cfg.Chat.SimulatedLatency = time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "openai":
		if c.Provider.APIKey == "" {
			return fmt.Errorf("provider openai requires api_key")
		}
	case "demo":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Name)
	}
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
