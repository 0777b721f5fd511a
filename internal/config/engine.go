package config

import (
	"fmt"
	"time"

	"github.com/lgbarn/gambit/internal/errors"
)

// EngineConfig holds settings for the external analysis engine.
type EngineConfig struct {
	// Path is the engine binary, looked up on PATH when not absolute
	Path string `yaml:"path"`

	// Args are extra command-line arguments for the engine
	Args []string `yaml:"args"`

	// Threads is sent as the engine's Threads option
	Threads int `yaml:"threads"`

	// HashMB is sent as the engine's Hash option
	HashMB int `yaml:"hash_mb"`

	// StartupTimeout bounds the startup handshake
	StartupTimeout time.Duration `yaml:"startup_timeout"`

	// OperationTimeout bounds each request
	OperationTimeout time.Duration `yaml:"operation_timeout"`

	// StopGrace is how long an interrupted search may take to finish
	StopGrace time.Duration `yaml:"stop_grace"`
}

// NewEngineConfig creates an EngineConfig with default values.
func NewEngineConfig() EngineConfig {
	return EngineConfig{
		Path:             "stockfish",
		Threads:          2,
		HashMB:           16,
		StartupTimeout:   10 * time.Second,
		OperationTimeout: 30 * time.Second,
		StopGrace:        500 * time.Millisecond,
	}
}

// Validate checks that the engine configuration is valid.
func (e *EngineConfig) Validate() error {
	if e.Path == "" {
		return fmt.Errorf("engine.path is empty: %w", errors.ErrInvalidConfig)
	}
	if err := requirePositive("engine.threads", e.Threads); err != nil {
		return err
	}
	if err := requirePositive("engine.hash_mb", e.HashMB); err != nil {
		return err
	}
	if err := requirePositiveDuration("engine.startup_timeout", e.StartupTimeout); err != nil {
		return err
	}
	if err := requirePositiveDuration("engine.operation_timeout", e.OperationTimeout); err != nil {
		return err
	}
	return requirePositiveDuration("engine.stop_grace", e.StopGrace)
}
