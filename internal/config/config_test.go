package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/go-blockflow/internal/log"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"EdgePolicy", cfg.EdgePolicy, "dedupe"},
		{"Predecessors", cfg.Predecessors, "cfg"},
		{"Solver", cfg.Solver, "passes"},
		{"CacheEnabled", cfg.CacheEnabled, false},
		{"CacheSize", cfg.CacheSize, 128},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogJSON", cfg.LogJSON, false},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:    "defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "dedupe and linear",
			mutate:  func(c *Config) { c.EdgePolicy = "dedupe"; c.Predecessors = "linear" },
			wantErr: false,
		},
		{
			name:        "invalid edge policy",
			mutate:      func(c *Config) { c.EdgePolicy = "merge" },
			wantErr:     true,
			errContains: "invalid edge policy",
		},
		{
			name:        "invalid predecessors",
			mutate:      func(c *Config) { c.Predecessors = "dominators" },
			wantErr:     true,
			errContains: "invalid predecessor model",
		},
		{
			name:        "invalid solver",
			mutate:      func(c *Config) { c.Solver = "chaotic" },
			wantErr:     true,
			errContains: "invalid solver strategy",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errContains: "invalid log level",
		},
		{
			name:        "cache without path",
			mutate:      func(c *Config) { c.CacheEnabled = true; c.CachePath = "" },
			wantErr:     true,
			errContains: "cache_path is required",
		},
		{
			name:        "cache with zero size",
			mutate:      func(c *Config) { c.CacheEnabled = true; c.CacheSize = 0 },
			wantErr:     true,
			errContains: "cache_size must be positive",
		},
		{
			name:    "zero size ignored when cache disabled",
			mutate:  func(c *Config) { c.CacheSize = 0 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error containing %q, got nil", tt.errContains)
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Error = %q, should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		envVars     map[string]string
		checkCfg    func(*testing.T, *Config)
		wantErr     bool
		errContains string
	}{
		{
			name: "load valid config from file",
			configYAML: `
edge_policy: dedupe
predecessors: linear
cache_enabled: true
cache_path: /tmp/bfq-test/reports.msgpack
cache_size: 16
log_level: warn
log_json: true
`,
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.EdgePolicy != "dedupe" {
					t.Errorf("EdgePolicy = %v, want dedupe", cfg.EdgePolicy)
				}
				if cfg.Predecessors != "linear" {
					t.Errorf("Predecessors = %v, want linear", cfg.Predecessors)
				}
				if !cfg.CacheEnabled || cfg.CacheSize != 16 {
					t.Errorf("cache = %v/%d, want true/16", cfg.CacheEnabled, cfg.CacheSize)
				}
				if cfg.CachePath != "/tmp/bfq-test/reports.msgpack" {
					t.Errorf("CachePath = %v", cfg.CachePath)
				}
				if cfg.Level() != log.WarnLevel {
					t.Errorf("Level() = %v, want WARN", cfg.Level())
				}
				if !cfg.LogJSON {
					t.Error("LogJSON = false, want true")
				}
			},
		},
		{
			name:       "partial config keeps defaults",
			configYAML: "predecessors: linear\n",
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.EdgePolicy != "dedupe" {
					t.Errorf("EdgePolicy = %v, want dedupe", cfg.EdgePolicy)
				}
				if cfg.CacheSize != 128 {
					t.Errorf("CacheSize = %v, want 128", cfg.CacheSize)
				}
			},
		},
		{
			name:       "env overrides file",
			configYAML: "edge_policy: dedupe\n",
			envVars: map[string]string{
				"BFQ_EDGE_POLICY": "preserve",
				"BFQ_VERBOSE":     "1",
				"BFQ_CACHE_SIZE":  "7",
			},
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.EdgePolicy != "preserve" {
					t.Errorf("EdgePolicy = %v, want preserve", cfg.EdgePolicy)
				}
				if cfg.Level() != log.DebugLevel {
					t.Errorf("Level() = %v, want DEBUG when verbose", cfg.Level())
				}
				if cfg.CacheSize != 7 {
					t.Errorf("CacheSize = %v, want 7", cfg.CacheSize)
				}
			},
		},
		{
			name:        "invalid yaml",
			configYAML:  "edge_policy: [\n",
			wantErr:     true,
			errContains: "failed to parse config file",
		},
		{
			name:        "invalid value",
			configYAML:  "predecessors: random\n",
			wantErr:     true,
			errContains: "invalid predecessor model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.configYAML), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			cfg, err := LoadFromFile(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Error = %q, should contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			tt.checkCfg(t, cfg)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	c := DefaultConfig()
	c.EdgePolicy = "preserve"
	if err := c.Save(ProjectConfigFilePath()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.EdgePolicy != "preserve" {
		t.Errorf("EdgePolicy = %v, want preserve", loaded.EdgePolicy)
	}
}

func TestResolve_SkipsValidation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	t.Setenv("BFQ_EDGE_POLICY", "merge")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "invalid edge policy") {
		t.Errorf("Load() error = %v, want invalid edge policy", err)
	}

	c, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if c.EdgePolicy != "merge" {
		t.Errorf("EdgePolicy = %v, want merge", c.EdgePolicy)
	}
	if err := c.Validate(); err == nil {
		t.Error("Validate() = nil for an unknown edge policy")
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	c := DefaultConfig()
	c.Predecessors = "linear"
	c.LogLevel = "debug"
	if err := c.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Predecessors != "linear" || loaded.LogLevel != "debug" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
