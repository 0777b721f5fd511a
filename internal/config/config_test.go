package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lgbarn/gambit/internal/errors"
)

// TestEngineConfig_Defaults verifies EngineConfig has sensible defaults
func TestEngineConfig_Defaults(t *testing.T) {
	cfg := NewEngineConfig()

	if cfg.Path != "stockfish" {
		t.Errorf("Path = %q, want stockfish", cfg.Path)
	}
	if cfg.Threads != 2 {
		t.Errorf("Threads = %d, want 2", cfg.Threads)
	}
	if cfg.HashMB != 16 {
		t.Errorf("HashMB = %d, want 16", cfg.HashMB)
	}
	if cfg.StartupTimeout != 10*time.Second {
		t.Errorf("StartupTimeout = %v, want 10s", cfg.StartupTimeout)
	}
	if cfg.OperationTimeout != 30*time.Second {
		t.Errorf("OperationTimeout = %v, want 30s", cfg.OperationTimeout)
	}
}

// TestSearchConfig_Defaults verifies SearchConfig has sensible defaults
func TestSearchConfig_Defaults(t *testing.T) {
	want := SearchConfig{
		MoveTimeMs:         1000,
		Depth:              15,
		EvalDepth:          12,
		HintMoveTimeMs:     500,
		BlunderThresholdCp: 150,
	}
	if diff := cmp.Diff(want, NewSearchConfig()); diff != "" {
		t.Errorf("NewSearchConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewConfig_Valid(t *testing.T) {
	if err := NewConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty engine path", func(c *Config) { c.Engine.Path = "" }, true},
		{"zero threads", func(c *Config) { c.Engine.Threads = 0 }, true},
		{"negative hash", func(c *Config) { c.Engine.HashMB = -1 }, true},
		{"zero startup timeout", func(c *Config) { c.Engine.StartupTimeout = 0 }, true},
		{"zero stop grace", func(c *Config) { c.Engine.StopGrace = 0 }, true},
		{"zero depth", func(c *Config) { c.Search.Depth = 0 }, true},
		{"zero blunder threshold", func(c *Config) { c.Search.BlunderThresholdCp = 0 }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"console format", func(c *Config) { c.Log.Format = "console" }, false},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_Decode(t *testing.T) {
	doc := `
engine:
  path: /usr/games/stockfish
  threads: 4
  operation_timeout: 5s
search:
  depth: 20
log:
  format: console
`
	cfg := NewConfig()
	if err := cfg.Decode(strings.NewReader(doc)); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if cfg.Engine.Path != "/usr/games/stockfish" {
		t.Errorf("Engine.Path = %q", cfg.Engine.Path)
	}
	if cfg.Engine.Threads != 4 {
		t.Errorf("Engine.Threads = %d, want 4", cfg.Engine.Threads)
	}
	if cfg.Engine.OperationTimeout != 5*time.Second {
		t.Errorf("Engine.OperationTimeout = %v, want 5s", cfg.Engine.OperationTimeout)
	}
	if cfg.Engine.HashMB != 16 {
		t.Errorf("Engine.HashMB = %d, want default 16", cfg.Engine.HashMB)
	}
	if cfg.Search.Depth != 20 {
		t.Errorf("Search.Depth = %d, want 20", cfg.Search.Depth)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format = %q, want console", cfg.Log.Format)
	}
}

func TestConfig_DecodeRejectsUnknownKeys(t *testing.T) {
	cfg := NewConfig()
	err := cfg.Decode(strings.NewReader("engine:\n  colour: blue\n"))
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Fatalf("Decode() error = %v, want ErrInvalidConfig", err)
	}
}

func TestConfig_DecodeEmpty(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Decode(strings.NewReader("  \n")); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(NewConfig(), cfg); diff != "" {
		t.Errorf("empty document changed config (-want +got):\n%s", diff)
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvEnginePath:  "/opt/sf",
		EnvThreads:     "8",
		EnvSearchDepth: "22",
		EnvLogLevel:    "debug",
		EnvHTTPAddr:    "127.0.0.1:9000",
		EnvHashMB:      "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := NewConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Engine.Path != "/opt/sf" {
		t.Errorf("Engine.Path = %q", cfg.Engine.Path)
	}
	if cfg.Engine.Threads != 8 {
		t.Errorf("Engine.Threads = %d, want 8", cfg.Engine.Threads)
	}
	if cfg.Engine.HashMB != 16 {
		t.Errorf("Engine.HashMB = %d, want unchanged 16", cfg.Engine.HashMB)
	}
	if cfg.Search.Depth != 22 {
		t.Errorf("Search.Depth = %d, want 22", cfg.Search.Depth)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestConfig_ApplyEnvBadInteger(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == EnvMoveTimeMs {
			return "soon", true
		}
		return "", false
	}
	err := NewConfig().ApplyEnv(lookup)
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Fatalf("ApplyEnv() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvEvalDepth, "9")

	path := filepath.Join(t.TempDir(), "gambit.yaml")
	if err := os.WriteFile(path, []byte("search:\n  eval_depth: 14\n  depth: 18\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Search.Depth != 18 {
		t.Errorf("Search.Depth = %d, want 18 from file", cfg.Search.Depth)
	}
	if cfg.Search.EvalDepth != 9 {
		t.Errorf("Search.EvalDepth = %d, want 9 from environment", cfg.Search.EvalDepth)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("engine:\n  threads: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml")},
		{"fails validation", invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestConfigBuilder(t *testing.T) {
	cfg := NewConfigBuilder().
		WithEnginePath("/bin/sf", "--quiet").
		WithThreads(1).
		WithHashMB(64).
		WithTimeouts(time.Second, 2*time.Second).
		WithSearch(250, 8).
		WithEvalDepth(6).
		WithBlunderThreshold(300).
		WithLog("warn", "console").
		WithAddr(":9090").
		Build()

	want := NewConfig()
	want.Engine.Path = "/bin/sf"
	want.Engine.Args = []string{"--quiet"}
	want.Engine.Threads = 1
	want.Engine.HashMB = 64
	want.Engine.StartupTimeout = time.Second
	want.Engine.OperationTimeout = 2 * time.Second
	want.Search.MoveTimeMs = 250
	want.Search.Depth = 8
	want.Search.EvalDepth = 6
	want.Search.BlunderThresholdCp = 300
	want.Log = LogConfig{Level: "warn", Format: "console"}
	want.Server.Addr = ":9090"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("built config invalid: %v", err)
	}
}
