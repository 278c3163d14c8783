package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-blockflow/internal/config"
	"github.com/l3aro/go-blockflow/internal/log"
	"github.com/l3aro/go-blockflow/pkg/analysis"
	"github.com/l3aro/go-blockflow/pkg/cache"
	"github.com/l3aro/go-blockflow/pkg/cfg"
	"github.com/l3aro/go-blockflow/pkg/dfg"
)

// stdinPath makes a command read the program from standard input.
const stdinPath = "-"

// session carries the effective configuration of one command invocation.
type session struct {
	cfg    *config.Config
	logger log.Logger
	cache  *cache.LRU[*analysis.Report]
	runner *analysis.Runner
}

// newSession loads the config, applies the persistent flag overrides and
// prepares a runner, loading the report cache when it is enabled.
func newSession(cmd *cobra.Command) (*session, error) {
	c, err := config.Resolve()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("edges"); v != "" {
		c.EdgePolicy = v
	}
	if v, _ := flags.GetString("preds"); v != "" {
		c.Predecessors = v
	}
	if v, _ := flags.GetString("solver"); v != "" {
		c.Solver = v
	}
	if v, _ := flags.GetBool("verbose"); v {
		c.Verbose = true
	}
	if v, _ := flags.GetBool("no-cache"); v {
		c.CacheEnabled = false
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := log.New(log.LoggerConfig{
		Level:      c.Level(),
		JSONOutput: c.LogJSON,
		Output:     cmd.ErrOrStderr(),
	})

	// These parse cleanly after Validate.
	policy, _ := cfg.ParseEdgePolicy(c.EdgePolicy)
	model, _ := dfg.ParsePredecessorModel(c.Predecessors)
	strategy, _ := dfg.ParseStrategy(c.Solver)

	s := &session{cfg: c, logger: logger}
	options := []analysis.RunnerOption{analysis.WithLogger(logger)}
	if c.CacheEnabled {
		s.cache = cache.New(cache.Options[*analysis.Report]{MaxEntries: c.CacheSize})
		if err := s.cache.LoadFile(c.CachePath); err != nil {
			logger.Warn("ignoring unreadable cache", "path", c.CachePath, "err", err)
			s.cache.Clear()
		}
		options = append(options, analysis.WithCache(s.cache))
	}
	s.runner = analysis.NewRunner(analysis.Options{EdgePolicy: policy, Predecessors: model, Solver: strategy}, options...)

	return s, nil
}

// analyze runs the pipeline over path, or over stdin for "-", and persists
// the cache afterwards.
func (s *session) analyze(cmd *cobra.Command, path string) (*analysis.Report, error) {
	var (
		report *analysis.Report
		err    error
	)

	if path == stdinPath {
		data, rerr := io.ReadAll(cmd.InOrStdin())
		if rerr != nil {
			return nil, fmt.Errorf("reading stdin: %w", rerr)
		}
		report = s.runner.AnalyzeText(string(data))
	} else {
		if err := checkFile(path); err != nil {
			return nil, err
		}
		report, err = s.runner.AnalyzeFile(path)
		if err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		if err := s.cache.SaveFile(s.cfg.CachePath); err != nil {
			s.logger.Warn("could not save cache", "path", s.cfg.CachePath, "err", err)
		}
	}
	return report, nil
}

// runReport is the common body of the per-file commands.
func runReport(cmd *cobra.Command, path string) (*analysis.Report, error) {
	s, err := newSession(cmd)
	if err != nil {
		return nil, err
	}
	return s.analyze(cmd, path)
}

// checkFile rejects missing paths and directories before analysis.
func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, expected a file: %s", path)
	}
	return nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
