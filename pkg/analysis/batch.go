package analysis

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// FileResult pairs a file with its report, or with the error that stopped it.
type FileResult struct {
	Path   string  `json:"path" yaml:"path"`
	Report *Report `json:"report,omitempty" yaml:"report,omitempty"`
	Err    error   `json:"-" yaml:"-"`
}

// AnalyzeFiles analyzes paths on up to workers goroutines (NumCPU when
// workers <= 0). Results keep the order of paths; a failing file does not
// stop the others. Files not yet started when ctx is done report ctx.Err().
func (r *Runner) AnalyzeFiles(ctx context.Context, paths []string, workers int) []FileResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]FileResult, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return nil
			}
			report, err := r.AnalyzeFile(path)
			if err != nil {
				r.logger.Warn("analysis failed", "path", path, "err", err)
			}
			results[i] = FileResult{Path: path, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	r.logger.Debug("batch analyzed", "files", len(paths), "workers", workers)
	return results
}
