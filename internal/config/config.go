package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all expectrd configuration.
type Config struct {
	Server  ServerConfig
	Logging LogConfig
	Session SessionConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"7070"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// SessionConfig holds the defaults applied to every spawned session.
type SessionConfig struct {
	TimeoutSeconds int  `envconfig:"SESSION_TIMEOUT" default:"30"`
	BufferSize     int  `envconfig:"SESSION_BUFFER_SIZE" default:"8192"`
	Constrain      bool `envconfig:"SESSION_CONSTRAIN" default:"false"`
}

// Timeout returns the session expect timeout as a duration.
func (c SessionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from the environment or returns the
// default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "7070",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Session: SessionConfig{
			TimeoutSeconds: 30,
			BufferSize:     8192,
			Constrain:      false,
		},
	}
}
