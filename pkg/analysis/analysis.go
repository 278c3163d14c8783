// Package analysis runs the full pipeline over one program: leaders, basic
// blocks, the control flow graph and its metrics, and reaching definitions.
package analysis

import (
	"fmt"
	"strings"

	"github.com/l3aro/go-blockflow/internal/log"
	"github.com/l3aro/go-blockflow/pkg/cache"
	"github.com/l3aro/go-blockflow/pkg/cfg"
	"github.com/l3aro/go-blockflow/pkg/dfg"
	"github.com/l3aro/go-blockflow/pkg/source"
)

// Options selects the policies of one analysis run.
type Options struct {
	EdgePolicy   cfg.EdgePolicy
	Predecessors dfg.PredecessorModel
	Solver       dfg.Strategy
}

// withDefaults fills unset policies with the defaults.
func (o Options) withDefaults() Options {
	if o.EdgePolicy == "" {
		o.EdgePolicy = cfg.EdgePolicyDedupe
	}
	if o.Predecessors == "" {
		o.Predecessors = dfg.PredecessorsCFG
	}
	if o.Solver == "" {
		o.Solver = dfg.StrategyPasses
	}
	return o
}

// key identifies the options inside a cache key.
func (o Options) key() string {
	return string(o.EdgePolicy) + "/" + string(o.Predecessors) + "/" + string(o.Solver)
}

// Report is the complete result of analyzing one program.
type Report struct {
	Source   string            `json:"source,omitempty" yaml:"source,omitempty" msgpack:"source"`
	Lines    []source.Line     `json:"lines" yaml:"lines" msgpack:"lines"`
	Leaders  []int             `json:"leaders" yaml:"leaders" msgpack:"leaders"`
	Blocks   []cfg.BasicBlock  `json:"blocks" yaml:"blocks" msgpack:"blocks"`
	Graph    *cfg.Graph        `json:"cfg" yaml:"cfg" msgpack:"cfg"`
	Metrics  cfg.Metrics       `json:"metrics" yaml:"metrics" msgpack:"metrics"`
	Dataflow *dfg.Table        `json:"dataflow" yaml:"dataflow" msgpack:"dataflow"`
	Options  map[string]string `json:"options" yaml:"options" msgpack:"options"`
}

// Analyze runs every stage over lines. Empty input yields an empty report.
func Analyze(lines []source.Line, opts Options) *Report {
	opts = opts.withDefaults()

	leaders := cfg.FindLeaders(lines)
	blocks := cfg.BuildBlocks(lines, leaders)
	graph := cfg.Build(blocks, opts.EdgePolicy)

	return &Report{
		Lines:    lines,
		Leaders:  leaders,
		Blocks:   blocks,
		Graph:    graph,
		Metrics:  cfg.ComputeMetrics(graph),
		Dataflow: dfg.ReachingDefinitions(blocks, graph, opts.Predecessors, opts.Solver),
		Options: map[string]string{
			"edge_policy":  string(opts.EdgePolicy),
			"predecessors": string(opts.Predecessors),
			"solver":       string(opts.Solver),
		},
	}
}

// Runner analyzes files, logging each stage and reusing cached reports.
type Runner struct {
	opts   Options
	logger log.Logger
	cache  *cache.LRU[*Report]
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger; the default discards output.
func WithLogger(l log.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithCache enables report caching.
func WithCache(c *cache.LRU[*Report]) RunnerOption {
	return func(r *Runner) {
		r.cache = c
	}
}

// NewRunner creates a Runner for opts.
func NewRunner(opts Options, options ...RunnerOption) *Runner {
	r := &Runner{opts: opts.withDefaults(), logger: log.Nop()}
	for _, o := range options {
		o(r)
	}
	return r
}

// AnalyzeFile loads the file at path and analyzes it.
func (r *Runner) AnalyzeFile(path string) (*Report, error) {
	lines, err := source.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	r.logger.Debug("loaded lines", "path", path, "lines", len(lines))

	report := *r.analyzeLines(lines)
	report.Source = path
	return &report, nil
}

// AnalyzeText analyzes an in-memory program.
func (r *Runner) AnalyzeText(text string) *Report {
	lines, err := source.Load(strings.NewReader(text))
	if err != nil {
		// Only an over-long line makes the scanner fail; split by hand.
		r.logger.Warn("falling back to plain line split", "err", err)
		lines = source.LoadString(text)
	}
	r.logger.Debug("loaded lines", "lines", len(lines))

	return r.analyzeLines(lines)
}

// analyzeLines runs the pipeline over normalized lines. The cache key covers
// the normalized statements, so whitespace-only edits hit the same entry.
func (r *Runner) analyzeLines(lines []source.Line) *Report {
	key := cache.Key(strings.Join(source.Texts(lines), "\n"), r.opts.key())
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			r.logger.Debug("cache hit", "key", key[:12])
			return cached
		}
	}

	report := Analyze(lines, r.opts)
	r.logger.Debug("built cfg",
		"leaders", len(report.Leaders),
		"blocks", len(report.Blocks),
		"edges", report.Metrics.Edges,
		"cc", report.Metrics.CyclomaticComplexity)
	if report.Metrics.Components > 1 {
		r.logger.Warn("cfg is disconnected, cyclomatic complexity assumes one component",
			"components", report.Metrics.Components)
	}
	r.logger.Debug("reaching definitions converged",
		"definitions", len(report.Dataflow.Definitions),
		"solver", report.Dataflow.Strategy,
		"iterations", report.Dataflow.Iterations)

	if r.cache != nil {
		r.cache.Set(key, report)
	}
	return report
}
