package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-blockflow/internal/scanner"
	"github.com/l3aro/go-blockflow/pkg/analysis"
)

// scanSummary is the JSON shape of one scanned file.
type scanSummary struct {
	Path        string `json:"path"`
	Blocks      int    `json:"blocks"`
	Edges       int    `json:"edges"`
	Complexity  int    `json:"cyclomatic_complexity"`
	Definitions int    `json:"definitions"`
	Error       string `json:"error,omitempty"`
}

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Analyze every program file under a directory",
	Long: `Walks a directory (default ".") honoring .bfqignore, analyzes each
accepted file in parallel and prints one summary row per file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		opts := scanner.DefaultOptions()
		if cmd.Flags().Changed("ext") {
			opts.Extensions, _ = cmd.Flags().GetStringSlice("ext")
		}
		if all, _ := cmd.Flags().GetBool("hidden"); all {
			opts.SkipHidden = false
		}

		files, err := scanner.New(opts).Scan(root)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", root, err)
		}
		s.logger.Debug("scanned", "root", root, "files", len(files))

		workers, _ := cmd.Flags().GetInt("workers")
		paths := lo.Map(files, func(f scanner.FileInfo, _ int) string { return f.FullPath })
		results := s.runner.AnalyzeFiles(cmd.Context(), paths, workers)

		if s.cache != nil {
			if err := s.cache.SaveFile(s.cfg.CachePath); err != nil {
				s.logger.Warn("could not save cache", "path", s.cfg.CachePath, "err", err)
			}
		}

		summaries := make([]scanSummary, len(results))
		for i, res := range results {
			summaries[i] = summarize(files[i].Path, res)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), summaries)
		}
		return printScan(cmd.OutOrStdout(), summaries)
	},
}

func summarize(path string, res analysis.FileResult) scanSummary {
	if res.Err != nil {
		return scanSummary{Path: path, Error: res.Err.Error()}
	}
	r := res.Report
	return scanSummary{
		Path:        path,
		Blocks:      len(r.Blocks),
		Edges:       r.Metrics.Edges,
		Complexity:  r.Metrics.CyclomaticComplexity,
		Definitions: len(r.Dataflow.Definitions),
	}
}

func printScan(w io.Writer, summaries []scanSummary) error {
	failed := lo.Filter(summaries, func(s scanSummary, _ int) bool { return s.Error != "" })
	ok := lo.Filter(summaries, func(s scanSummary, _ int) bool { return s.Error == "" })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "File\tBlocks\tEdges\tCC\tDefs")
	for _, s := range ok {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", s.Path, s.Blocks, s.Edges, s.Complexity, s.Definitions)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d files analyzed, %d failed\n", len(ok), len(failed))
	if len(ok) > 0 {
		top := lo.MaxBy(ok, func(a, b scanSummary) bool { return a.Complexity > b.Complexity })
		fmt.Fprintf(w, "Highest complexity: %s (%d)\n", top.Path, top.Complexity)
	}
	for _, s := range failed {
		fmt.Fprintf(w, "  ✗ %s: %s\n", s.Path, s.Error)
	}
	return nil
}

func init() {
	scanCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	scanCmd.Flags().IntP("workers", "w", 0, "Parallel workers (0 uses every CPU)")
	scanCmd.Flags().StringSlice("ext", nil, "Accepted extensions, e.g. .c,.py (default: common source extensions)")
	scanCmd.Flags().Bool("hidden", false, "Include hidden files and directories")
	RootCmd.AddCommand(scanCmd)
}
