package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	API         APIConfig         `yaml:"api" mapstructure:"api"`
	Database    DatabaseConfig    `yaml:"database" mapstructure:"database"`
	Redis       RedisConfig       `yaml:"redis" mapstructure:"redis"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Maintenance MaintenanceConfig `yaml:"maintenance" mapstructure:"maintenance"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// APIConfig represents REST API configuration
type APIConfig struct {
	Port   int    `yaml:"port" mapstructure:"port"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

// DatabaseConfig represents catalog database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// RedisConfig represents cache backend configuration.
// When Enabled is false the service falls back to the in-process cache.
type RedisConfig struct {
	Enabled           *bool         `yaml:"enabled" mapstructure:"enabled"`
	Addr              string        `yaml:"addr" mapstructure:"addr"`
	Password          string        `yaml:"password" mapstructure:"password"`
	DB                int           `yaml:"db" mapstructure:"db"`
	OpTimeout         time.Duration `yaml:"op_timeout" mapstructure:"op_timeout"`
	KeepAliveInterval time.Duration `yaml:"keep_alive_interval" mapstructure:"keep_alive_interval"`
}

// StoreConfig represents catalog store read behavior
type StoreConfig struct {
	QueryTimeout time.Duration `yaml:"query_timeout" mapstructure:"query_timeout"`
}

// MaintenanceConfig represents scheduled cache maintenance.
// FlushSchedule is a cron expression; empty disables the job.
type MaintenanceConfig struct {
	FlushSchedule string `yaml:"flush_schedule" mapstructure:"flush_schedule"`
}

// LogConfig represents logging configuration with rotation support
type LogConfig struct {
	File       string `yaml:"file" mapstructure:"file"`               // Log file path (empty = console only)
	Level      string `yaml:"level" mapstructure:"level"`             // Log level (debug, info, warn, error)
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // Max size in MB before rotation
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // Max age in days to keep files
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // Max number of old files to keep
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // Compress old log files
}

// RedisEnabled reports whether the Redis cache backend is configured on.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Enabled != nil && *c.Redis.Enabled
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	enabled := false
	return &Config{
		API: APIConfig{
			Port:   8080,
			Prefix: "/api",
		},
		Database: DatabaseConfig{
			Path: "agentmart.db",
		},
		Redis: RedisConfig{
			Enabled:           &enabled,
			Addr:              "localhost:6379",
			OpTimeout:         500 * time.Millisecond,
			KeepAliveInterval: 30 * time.Second,
		},
		Store: StoreConfig{
			QueryTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 5,
		},
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port: %d", c.API.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.RedisEnabled() && c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required when redis is enabled")
	}
	if c.Redis.OpTimeout <= 0 {
		return fmt.Errorf("redis op_timeout must be positive")
	}
	if c.Store.QueryTimeout <= 0 {
		return fmt.Errorf("store query_timeout must be positive")
	}
	return nil
}

// LoadConfig loads configuration from file and merges with defaults.
// A missing file is not an error; the defaults are used as-is so the
// service can start against a local sqlite database with no cache backend.
func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	// Own viper instance: no state shared between loads
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			if verr := config.Validate(); verr != nil {
				return nil, fmt.Errorf("config validation failed: %w", verr)
			}
			return config, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if verr := config.Validate(); verr != nil {
				return nil, fmt.Errorf("config validation failed: %w", verr)
			}
			return config, nil
		}
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration to the given file as YAML
func SaveConfig(config *Config, filename string) error {
	if filename == "" {
		return fmt.Errorf("no config file path provided")
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
