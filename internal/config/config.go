package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/l3aro/go-blockflow/internal/log"
	"github.com/l3aro/go-blockflow/pkg/cfg"
	"github.com/l3aro/go-blockflow/pkg/dfg"
)

// Config holds all configuration for bfq
type Config struct {
	// EdgePolicy decides whether a control block's branch edge is merged into
	// its fall-through edge ("dedupe") or kept next to it ("preserve")
	EdgePolicy string `yaml:"edge_policy" env:"BFQ_EDGE_POLICY"`

	// Predecessors selects the predecessor relation for reaching definitions
	// ("cfg" or "linear")
	Predecessors string `yaml:"predecessors" env:"BFQ_PREDECESSORS"`

	// Solver selects the fixed point strategy ("passes" or "worklist")
	Solver string `yaml:"solver" env:"BFQ_SOLVER"`

	// Result cache
	CacheEnabled bool   `yaml:"cache_enabled" env:"BFQ_CACHE_ENABLED"`
	CachePath    string `yaml:"cache_path" env:"BFQ_CACHE_PATH"`
	CacheSize    int    `yaml:"cache_size" env:"BFQ_CACHE_SIZE"`

	// Logging
	LogLevel string `yaml:"log_level" env:"BFQ_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"BFQ_LOG_JSON"`
	Verbose  bool   `yaml:"verbose" env:"BFQ_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		EdgePolicy:   string(cfg.EdgePolicyDedupe),
		Predecessors: string(dfg.PredecessorsCFG),
		Solver:       string(dfg.StrategyPasses),
		CacheEnabled: false,
		CachePath:    defaultCachePath(),
		CacheSize:    128,
		LogLevel:     "info",
		LogJSON:      false,
		Verbose:      false,
	}
}

// defaultCachePath returns the cache file under the user cache directory
func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".bfq", "cache", "reports.msgpack")
	}
	return filepath.Join(dir, "bfq", "reports.msgpack")
}

// GlobalConfigFilePath returns the global config file path (~/.bfq/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".bfq", "config.yaml")
	}
	return filepath.Join(home, ".bfq", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.bfq/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(".bfq", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.bfq/config.yaml)
// 3. Global config (~/.bfq/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	c, err := Resolve()
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Resolve merges the config layers like Load but leaves validation to the
// caller. Only unreadable YAML is an error.
func Resolve() (*Config, error) {
	c := DefaultConfig()

	for _, path := range []string{GlobalConfigFilePath(), ProjectConfigFilePath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(c)

	return c, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	c := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(c)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("BFQ_EDGE_POLICY"); v != "" {
		c.EdgePolicy = v
	}
	if v := os.Getenv("BFQ_PREDECESSORS"); v != "" {
		c.Predecessors = v
	}
	if v := os.Getenv("BFQ_SOLVER"); v != "" {
		c.Solver = v
	}
	if v := os.Getenv("BFQ_CACHE_ENABLED"); v != "" {
		c.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv("BFQ_CACHE_PATH"); v != "" {
		c.CachePath = v
	}
	if v := os.Getenv("BFQ_CACHE_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			c.CacheSize = i
		}
	}
	if v := os.Getenv("BFQ_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BFQ_LOG_JSON"); v != "" {
		c.LogJSON = parseBool(v)
	}
	if v := os.Getenv("BFQ_VERBOSE"); v != "" {
		c.Verbose = parseBool(v)
	}
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if _, err := cfg.ParseEdgePolicy(c.EdgePolicy); err != nil {
		return err
	}
	if _, err := dfg.ParsePredecessorModel(c.Predecessors); err != nil {
		return err
	}
	if _, err := dfg.ParseStrategy(c.Solver); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.CacheEnabled {
		if c.CachePath == "" {
			return fmt.Errorf("cache_path is required when cache_enabled is true")
		}
		if c.CacheSize <= 0 {
			return fmt.Errorf("cache_size must be positive")
		}
	}
	return nil
}

// Level returns the effective log level; Verbose forces debug.
func (c *Config) Level() log.Level {
	if c.Verbose {
		return log.DebugLevel
	}
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

// parseBool accepts the spellings the environment commonly uses
func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}
