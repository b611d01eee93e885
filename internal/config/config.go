// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xin0nix/road-n-roll/internal/logging"
)

// Config is the whole application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      logging.Config `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig configures the Postgres connection.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			IdleTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host: "127.0.0.1",
			Port: 5432,
			User: "postgres",
			Name: "core",
		},
		Log: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a yaml file over the defaults, applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnv lets the environment override the database settings, so
// credentials stay out of the config file.
func (c *Config) applyEnv() {
	c.Database.Host = envOrDefault("CORE_DB_HOST", c.Database.Host)
	c.Database.User = envOrDefault("CORE_DB_USER", c.Database.User)
	c.Database.Password = envOrDefault("CORE_DB_PASSWORD", c.Database.Password)
	c.Database.Name = envOrDefault("CORE_DB_NAME", c.Database.Name)

	if port := os.Getenv("CORE_DB_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			n = 0 // force the validation failure
		}
		c.Database.Port = n
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("invalid idle timeout: %s", c.Server.IdleTimeout)
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	return nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
