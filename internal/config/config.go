// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"datacore/internal/errors"
	"datacore/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Rates contains rate-table configuration
	Rates RatesConfig `json:"rates" yaml:"rates"`

	// DB contains database configuration
	DB DBConfig `json:"db" yaml:"db"`

	// Server contains API server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Billing contains billing configuration
	Billing BillingConfig `json:"billing" yaml:"billing"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// RatesConfig contains rate-table settings
type RatesConfig struct {
	// Path is the path to the HCL rates file
	Path string `json:"path" yaml:"path"`
}

// DBConfig contains database settings
type DBConfig struct {
	// Path is the path to the SQLite database file
	Path string `json:"path" yaml:"path"`
}

// ServerConfig contains API server settings
type ServerConfig struct {
	// Host is the listen address
	Host string `json:"host" yaml:"host"`

	// Port is the listen port
	Port int `json:"port" yaml:"port"`
}

// BillingConfig contains billing settings
type BillingConfig struct {
	// BaselineCPU is the CPU count included in the base charge
	BaselineCPU int `json:"baseline_cpu" yaml:"baseline_cpu"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".datacore")

	return &Config{
		Version: "1.0",
		Rates: RatesConfig{
			Path: filepath.Join(base, "rates.hcl"),
		},
		DB: DBConfig{
			Path: filepath.Join(base, "datacore.db"),
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Billing: BillingConfig{
			BaselineCPU: 4,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file.
// JSON and YAML are both accepted, selected by file extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Config("failed to parse config file", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, errors.Config("failed to parse config file", err)
		}
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
