// ABOUTME: Server configuration from YAML file plus GROUPTREE_* env overrides
// ABOUTME: Declarative struct-tag validation via go-playground/validator

// Package config loads the grouptree server configuration. Precedence
// is defaults, then the optional YAML file, then GROUPTREE_* environment
// variables; the merged result is validated declaratively.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the merged server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`

	// Watch enables the codes-file change watcher.
	Watch bool `yaml:"watch"`
}

// ServerConfig holds the listener addresses.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`

	// ObsPort is the observability listener (metrics, pprof, health).
	ObsPort int `yaml:"obs_port" validate:"min=1,max=65535,nefield=Port"`
}

// LogConfig holds the logging options.
type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Pretty     bool   `yaml:"pretty"`
	WithCaller bool   `yaml:"with_caller"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:    "127.0.0.1",
			Port:    8750,
			ObsPort: 9750,
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: true,
	}
}

// Load builds the configuration: defaults, overlaid by the YAML file
// at path (skipped when path is empty), overlaid by environment
// variables, then validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays GROUPTREE_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("GROUPTREE_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("GROUPTREE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("GROUPTREE_OBS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.ObsPort = port
		}
	}
	if v := os.Getenv("GROUPTREE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("GROUPTREE_LOG_PRETTY"); v != "" {
		if pretty, err := strconv.ParseBool(v); err == nil {
			c.Log.Pretty = pretty
		}
	}
	if v := os.Getenv("GROUPTREE_WATCH"); v != "" {
		if watch, err := strconv.ParseBool(v); err == nil {
			c.Watch = watch
		}
	}
}

// Validate checks the merged configuration against its struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// APIAddr returns the host:port of the API listener.
func (c Config) APIAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ObsAddr returns the host:port of the observability listener.
func (c Config) ObsAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.ObsPort)
}
