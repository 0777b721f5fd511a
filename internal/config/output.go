package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lgbarn/gambit/internal/errors"
)

// LogConfig holds settings related to log output.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error
	Level string `yaml:"level"`

	// Format is "json" or "console"
	Format string `yaml:"format"`
}

// NewLogConfig creates a LogConfig with default values.
func NewLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "json",
	}
}

// Validate checks that the log configuration is valid.
func (l *LogConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unknown log level %q: %w", l.Level, errors.ErrInvalidConfig)
	}
	switch strings.ToLower(l.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q: %w", l.Format, errors.ErrInvalidConfig)
	}
	return nil
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// NewServerConfig creates a ServerConfig with default values.
func NewServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Validate checks that the server configuration is valid.
func (s *ServerConfig) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("server.addr is empty: %w", errors.ErrInvalidConfig)
	}
	return requirePositiveDuration("server.shutdown_timeout", s.ShutdownTimeout)
}
