// Package config provides configuration for the gambit engine client,
// training use-cases, HTTP server and CLI.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lgbarn/gambit/internal/errors"
)

// Environment variables that override file settings.
const (
	EnvEnginePath  = "GAMBIT_ENGINE_PATH"
	EnvThreads     = "GAMBIT_ENGINE_THREADS"
	EnvHashMB      = "GAMBIT_ENGINE_HASH_MB"
	EnvMoveTimeMs  = "GAMBIT_MOVE_TIME_MS"
	EnvSearchDepth = "GAMBIT_SEARCH_DEPTH"
	EnvEvalDepth   = "GAMBIT_EVAL_DEPTH"
	EnvLogLevel    = "GAMBIT_LOG_LEVEL"
	EnvLogFormat   = "GAMBIT_LOG_FORMAT"
	EnvHTTPAddr    = "GAMBIT_HTTP_ADDR"
)

// Config holds all program configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Engine: NewEngineConfig(),
		Search: NewSearchConfig(),
		Log:    NewLogConfig(),
		Server: NewServerConfig(),
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "opening config")
		}
		defer f.Close()
		if err := cfg.Decode(f); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays YAML from r onto cfg. Unknown keys are rejected.
func (cfg *Config) Decode(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvEnginePath); ok && v != "" {
		cfg.Engine.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Log.Format = v
	}
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		cfg.Server.Addr = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvThreads, &cfg.Engine.Threads},
		{EnvHashMB, &cfg.Engine.HashMB},
		{EnvMoveTimeMs, &cfg.Search.MoveTimeMs},
		{EnvSearchDepth, &cfg.Search.Depth},
		{EnvEvalDepth, &cfg.Search.EvalDepth},
	}
	for _, e := range ints {
		v, ok := lookup(e.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q is not an integer: %w", e.name, v, errors.ErrInvalidConfig)
		}
		*e.dst = n
	}
	return nil
}

// Validate checks every section of the configuration.
func (cfg *Config) Validate() error {
	if err := cfg.Engine.Validate(); err != nil {
		return err
	}
	if err := cfg.Search.Validate(); err != nil {
		return err
	}
	if err := cfg.Log.Validate(); err != nil {
		return err
	}
	return cfg.Server.Validate()
}

// requirePositive returns ErrInvalidConfig when n is not positive.
func requirePositive(name string, n int) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d: %w", name, n, errors.ErrInvalidConfig)
	}
	return nil
}

// requirePositiveDuration returns ErrInvalidConfig when d is not positive.
func requirePositiveDuration(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s: %w", name, d, errors.ErrInvalidConfig)
	}
	return nil
}
