// Package config loads the optional pagecall.yaml file and applies
// PAGECALL_* environment overrides.
//
// Web surface policy (autoplay, inline playback, user agent, content mode)
// is fixed and deliberately absent from this package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/pagecall/pagecall-drift/pkg/logging"
)

// FileName is the name of the optional configuration file.
const FileName = "pagecall.yaml"

// Config is the process configuration for pagecall tooling and hosts.
type Config struct {
	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`
	Errors ErrorsConfig `yaml:"errors" envPrefix:"ERRORS_"`
	Bridge BridgeConfig `yaml:"bridge"`
	Assets AssetsConfig `yaml:"assets" envPrefix:"ASSETS_"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level,omitempty" env:"LEVEL"`
	Development bool   `yaml:"development,omitempty" env:"DEVELOPMENT"`
}

// ErrorsConfig controls the default error handler.
type ErrorsConfig struct {
	Verbose bool `yaml:"verbose,omitempty" env:"VERBOSE"`
}

// BridgeConfig controls message dispatch.
type BridgeConfig struct {
	// DispatchTimeout bounds each handler invocation. Zero means unbounded.
	DispatchTimeout time.Duration `yaml:"dispatch_timeout,omitempty" env:"DISPATCH_TIMEOUT"`
}

// AssetsConfig locates the bootstrap script.
type AssetsConfig struct {
	// Dir overrides the bundled assets with a directory on disk.
	Dir string `yaml:"dir,omitempty" env:"DIR"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
	}
}

// LoadOptional reads pagecall.yaml from dir if present. A missing file
// yields Default.
func LoadOptional(dir string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return cfg, nil
}

// Load reads pagecall.yaml from dir, applies environment overrides and
// validates the result.
func Load(dir string) (*Config, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields of cfg from PAGECALL_* environment variables.
// Unset variables leave the current values in place.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "PAGECALL_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Bridge.DispatchTimeout < 0 {
		return fmt.Errorf("bridge.dispatch_timeout must not be negative, got %s", c.Bridge.DispatchTimeout)
	}
	return nil
}
