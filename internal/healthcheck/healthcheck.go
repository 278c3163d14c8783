package healthcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-blockflow/internal/config"
	"github.com/l3aro/go-blockflow/pkg/analysis"
	"github.com/l3aro/go-blockflow/pkg/cache"
	"github.com/l3aro/go-blockflow/pkg/cfg"
	"github.com/l3aro/go-blockflow/pkg/dfg"
	"github.com/l3aro/go-blockflow/pkg/source"
)

// Status values reported for each component.
const (
	StatusReady    = "ready"
	StatusDisabled = "disabled"
	StatusError    = "error"
)

// probeProgram exercises a branch, a loop and a redefinition.
var probeProgram = []string{
	"x = 1",
	"if x > 0",
	"x = 2",
	"while x < 10",
	"x = x + 1",
	"y = x",
}

// ComponentStatus represents the health status of one component.
type ComponentStatus struct {
	Name   string
	Status string // "ready", "disabled" or "error"
	Detail string
	Error  string
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	EffectivePath  string
	EffectiveScope string // "global", "project" or "" for defaults
	Config         ComponentStatus
	Cache          ComponentStatus
	Pipeline       ComponentStatus
}

// OK reports whether no component is in error.
func (r *HealthCheckResult) OK() bool {
	for _, c := range []ComponentStatus{r.Config, r.Cache, r.Pipeline} {
		if c.Status == StatusError {
			return false
		}
	}
	return true
}

// Check performs a health check against the given config.
// effectivePath is the config file actually in use (may be empty when only
// defaults apply).
func Check(c *config.Config, effectivePath string) (*HealthCheckResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config is nil")
	}

	result := &HealthCheckResult{
		EffectivePath:  effectivePath,
		EffectiveScope: scopeFromPath(effectivePath),
	}

	result.Config = checkConfig(c)
	result.Cache = checkCache(c)
	if result.Config.Status == StatusError {
		result.Pipeline = ComponentStatus{
			Name:   "pipeline",
			Status: StatusError,
			Error:  "skipped: invalid configuration",
		}
	} else {
		result.Pipeline = checkPipeline(c)
	}

	return result, nil
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		globalDir := filepath.Join(home, ".bfq")
		if strings.HasPrefix(path, globalDir) {
			return "global"
		}
	}

	return "project"
}

func checkConfig(c *config.Config) ComponentStatus {
	status := ComponentStatus{
		Name:   "config",
		Detail: fmt.Sprintf("edge_policy=%s predecessors=%s solver=%s log_level=%s",
			c.EdgePolicy, c.Predecessors, c.Solver, c.Level()),
	}
	if err := c.Validate(); err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	status.Status = StatusReady
	return status
}

// checkCache loads the cache file the way a command would. A missing file is
// fine; it is created on the first cached run.
func checkCache(c *config.Config) ComponentStatus {
	status := ComponentStatus{Name: "cache", Detail: c.CachePath}
	if !c.CacheEnabled {
		status.Status = StatusDisabled
		return status
	}

	lru := cache.New(cache.Options[*analysis.Report]{MaxEntries: c.CacheSize})
	if err := lru.LoadFile(c.CachePath); err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}

	status.Status = StatusReady
	status.Detail = fmt.Sprintf("%s (%d/%d entries)", c.CachePath, lru.Len(), c.CacheSize)
	return status
}

// checkPipeline analyzes a small built-in program with the configured
// policies and verifies the basic identities of the result.
func checkPipeline(c *config.Config) ComponentStatus {
	status := ComponentStatus{Name: "pipeline"}

	policy, _ := cfg.ParseEdgePolicy(c.EdgePolicy)
	model, _ := dfg.ParsePredecessorModel(c.Predecessors)
	strategy, _ := dfg.ParseStrategy(c.Solver)
	report := analysis.Analyze(source.FromStrings(probeProgram), analysis.Options{
		EdgePolicy:   policy,
		Predecessors: model,
		Solver:       strategy,
	})

	m := report.Metrics
	switch {
	case len(report.Blocks) == 0:
		status.Error = "no basic blocks built"
	case m.CyclomaticComplexity != m.Edges-m.Nodes+2:
		status.Error = fmt.Sprintf("cyclomatic complexity %d does not match E - N + 2", m.CyclomaticComplexity)
	case len(report.Dataflow.Definitions) != 4:
		status.Error = fmt.Sprintf("found %d definitions, want 4", len(report.Dataflow.Definitions))
	}
	if status.Error != "" {
		status.Status = StatusError
		return status
	}

	status.Status = StatusReady
	status.Detail = fmt.Sprintf("%d blocks, %d edges, cc=%d, converged in %d iterations",
		len(report.Blocks), m.Edges, m.CyclomaticComplexity, report.Dataflow.Iterations)
	return status
}
