package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances.
type ConfigBuilder struct {
	cfg *Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: NewConfig(),
	}
}

// Build returns the built Config.
func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

// WithEnginePath sets the engine binary and its arguments.
func (b *ConfigBuilder) WithEnginePath(path string, args ...string) *ConfigBuilder {
	b.cfg.Engine.Path = path
	b.cfg.Engine.Args = args
	return b
}

// WithThreads sets the engine Threads option.
func (b *ConfigBuilder) WithThreads(n int) *ConfigBuilder {
	b.cfg.Engine.Threads = n
	return b
}

// WithHashMB sets the engine Hash option.
func (b *ConfigBuilder) WithHashMB(mb int) *ConfigBuilder {
	b.cfg.Engine.HashMB = mb
	return b
}

// WithTimeouts sets the startup and per-operation timeouts.
func (b *ConfigBuilder) WithTimeouts(startup, operation time.Duration) *ConfigBuilder {
	b.cfg.Engine.StartupTimeout = startup
	b.cfg.Engine.OperationTimeout = operation
	return b
}

// WithSearch sets the best-move search budget.
func (b *ConfigBuilder) WithSearch(moveTimeMs, depth int) *ConfigBuilder {
	b.cfg.Search.MoveTimeMs = moveTimeMs
	b.cfg.Search.Depth = depth
	return b
}

// WithEvalDepth sets the evaluation depth.
func (b *ConfigBuilder) WithEvalDepth(depth int) *ConfigBuilder {
	b.cfg.Search.EvalDepth = depth
	return b
}

// WithBlunderThreshold sets the centipawn drop that marks a blunder.
func (b *ConfigBuilder) WithBlunderThreshold(cp int) *ConfigBuilder {
	b.cfg.Search.BlunderThresholdCp = cp
	return b
}

// WithLog sets the log level and format.
func (b *ConfigBuilder) WithLog(level, format string) *ConfigBuilder {
	b.cfg.Log.Level = level
	b.cfg.Log.Format = format
	return b
}

// WithAddr sets the HTTP listen address.
func (b *ConfigBuilder) WithAddr(addr string) *ConfigBuilder {
	b.cfg.Server.Addr = addr
	return b
}
