// Package config loads gateway configuration from a YAML file with
// environment overrides. Precedence: defaults < file < environment.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alice-platform/gateway-engine/pkg/validation"
)

const (
	DefaultAddr            = "0.0.0.0:8081"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodyBytes    = 1 << 20 // 1 MiB
	DefaultLogLevel        = "info"
	DefaultBaseLatencyMs   = 15.0
	DefaultStepLatencyMs   = 5.0
)

// Environment variables recognized by ApplyEnv.
const (
	EnvAddr       = "GATEWAY_ADDR"
	EnvLogLevel   = "LOG_LEVEL"
	EnvEventsAddr = "GATEWAY_EVENTS_ADDR"
)

// Config holds every tunable of the gateway process.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Session SessionConfig `yaml:"session"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Events  EventsConfig  `yaml:"events"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SessionConfig controls connection defaults.
type SessionConfig struct {
	// EndpointBase overrides the advertised endpoint prefix; the region
	// is appended as a path segment.
	EndpointBase string `yaml:"endpoint_base"`
}

// MeshConfig controls the deterministic edge latency model:
// latency_ms = base + step*edgeIndex.
type MeshConfig struct {
	BaseLatencyMs float64 `yaml:"base_latency_ms"`
	StepLatencyMs float64 `yaml:"step_latency_ms"`
}

// EventsConfig controls the network event broadcaster. Disabled unless an
// address is configured.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// Load reads and parses a YAML config file, applies defaults and environment
// overrides, and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills in default values when empty.
func (c *Config) ApplyDefaults() {
	c.Server.Addr = validation.DefaultOr(c.Server.Addr, DefaultAddr)
	c.Server.ShutdownTimeout = validation.DefaultOrDuration(c.Server.ShutdownTimeout, DefaultShutdownTimeout)
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	c.Logging.Level = validation.DefaultOr(c.Logging.Level, DefaultLogLevel)
	if c.Mesh.BaseLatencyMs == 0 {
		c.Mesh.BaseLatencyMs = DefaultBaseLatencyMs
	}
	if c.Mesh.StepLatencyMs == 0 {
		c.Mesh.StepLatencyMs = DefaultStepLatencyMs
	}
}

// ApplyEnv overrides file values from the environment.
func (c *Config) ApplyEnv() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if addr := os.Getenv(EnvEventsAddr); addr != "" {
		c.Events.Enabled = true
		c.Events.Addr = addr
	}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	return validation.NewConfigValidator("Config").
		Required("Server.Addr", c.Server.Addr).
		Custom("Server.Addr", func() error {
			_, _, err := net.SplitHostPort(c.Server.Addr)
			return err
		}).
		MinDuration("Server.ShutdownTimeout", c.Server.ShutdownTimeout, time.Second).
		OneOf("Logging.Level", c.Logging.Level, []string{"debug", "info", "warn", "error"}).
		PositiveFloat("Mesh.BaseLatencyMs", c.Mesh.BaseLatencyMs).
		NonNegativeFloat("Mesh.StepLatencyMs", c.Mesh.StepLatencyMs).
		When(c.Events.Enabled, func(v *validation.ConfigValidator) {
			v.Required("Events.Addr", c.Events.Addr)
		}).
		Validate()
}
