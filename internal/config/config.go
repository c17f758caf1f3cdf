package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all backend-layer configuration.
type Config struct {
	Sandbox SandboxConfig `yaml:"sandbox"`
	Logging LogConfig     `yaml:"logging"`
}

// SandboxConfig bounds command execution and generated-script payloads.
type SandboxConfig struct {
	// CommandTimeout bounds a single execute call. Remote commands can
	// legitimately run for tens of minutes.
	CommandTimeout time.Duration `envconfig:"SANDBOX_COMMAND_TIMEOUT" default:"30m" yaml:"command_timeout"`
	// MaxOutputBytes truncates combined command output past this size.
	MaxOutputBytes int `envconfig:"SANDBOX_MAX_OUTPUT_BYTES" default:"100000" yaml:"max_output_bytes"`
	// MaxWriteBytes caps the decoded payload of a single write.
	MaxWriteBytes int `envconfig:"SANDBOX_MAX_WRITE_BYTES" default:"10485760" yaml:"max_write_bytes"`
	// WorkDir is the default root for relative operations.
	WorkDir string `envconfig:"SANDBOX_WORKDIR" default:"/" yaml:"workdir"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile loads environment configuration and overlays it with the YAML
// file at path.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Sandbox: SandboxConfig{
			CommandTimeout: 30 * time.Minute,
			MaxOutputBytes: 100000,
			MaxWriteBytes:  10 << 20,
			WorkDir:        "/",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
