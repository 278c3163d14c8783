package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-blockflow/pkg/analysis"
	"github.com/l3aro/go-blockflow/pkg/source"
)

const workedExample = "x = 1\nif x > 0\ny = 2\nz = 3\n"

// resetFlags restores every flag to its default so runs do not leak state
// through the package-level commands.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// isolate points HOME and the working directory at a fresh temp dir and
// writes the worked example there.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, ".cache"))
	t.Chdir(dir)

	path := filepath.Join(dir, "prog.txt")
	require.NoError(t, os.WriteFile(path, []byte(workedExample), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(RootCmd) })

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetIn(strings.NewReader(workedExample))
	RootCmd.SetArgs(args)

	err := RootCmd.Execute()
	return out.String(), err
}

func TestBlocksCommand(t *testing.T) {
	path := isolate(t)

	out, err := execute(t, "blocks", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Leaders: [1 2 3]")
	assert.Contains(t, out, `B1: ["x = 1"]`)
	assert.Contains(t, out, `B2: ["if x > 0"]`)
	assert.Contains(t, out, `B3: ["y = 2" "z = 3"]`)
}

func TestBlocksCommand_Stdin(t *testing.T) {
	isolate(t)

	out, err := execute(t, "blocks", "--json", "-")
	require.NoError(t, err)

	var blocks []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &blocks))
	assert.Len(t, blocks, 3)
}

func TestCFGCommand(t *testing.T) {
	path := isolate(t)

	out, err := execute(t, "cfg", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Nodes (3): B1, B2, B3")
	assert.Contains(t, out, "Edges (2):")
	assert.Contains(t, out, "B2 --fallthrough--> B3")
	assert.NotContains(t, out, "--branch-->")

	out, err = execute(t, "cfg", "--edges", "preserve", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Edges (3):")
	assert.Contains(t, out, "B2 --branch--> B3")
}

func TestCFGCommand_DOT(t *testing.T) {
	path := isolate(t)

	out, err := execute(t, "cfg", "--dot", "--edges", "preserve", path)
	require.NoError(t, err)
	assert.Contains(t, out, "digraph cfg {")
	assert.Equal(t, 2, strings.Count(out, "B2 -> B3"))

	_, err = execute(t, "cfg", "--dot", "--json", path)
	assert.Error(t, err)
}

func TestMetricsCommand(t *testing.T) {
	path := isolate(t)

	out, err := execute(t, "metrics", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Number of Nodes (N): 3")
	assert.Contains(t, out, "Number of Edges (E): 2")
	assert.Contains(t, out, "Cyclomatic Complexity (E - N + 2): 1")

	out, err = execute(t, "metrics", "--json", "--edges", "preserve", path)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, float64(2), m["cyclomatic_complexity"])
}

func TestRDCommand(t *testing.T) {
	path := isolate(t)

	out, err := execute(t, "rd", path)
	require.NoError(t, err)
	assert.Contains(t, out, "D1: x (in block B1)")
	assert.Contains(t, out, "D3: z (in block B3)")
	assert.Contains(t, out, "D2: line 3 -> y = 2")
	assert.Contains(t, out, "{D2, D3}")
	assert.Contains(t, out, "passes solver")

	out, err = execute(t, "rd", "--solver", "worklist", path)
	require.NoError(t, err)
	assert.Contains(t, out, "worklist solver, 3 iterations")
	assert.Contains(t, out, "{D2, D3}")

	_, err = execute(t, "rd", "--solver", "chaotic", path)
	assert.ErrorContains(t, err, "invalid solver strategy")
}

func TestAnalyzeCommand(t *testing.T) {
	path := isolate(t)

	out, err := execute(t, "analyze", path)
	require.NoError(t, err)
	var report analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, path, report.Source)
	assert.Equal(t, []int{1, 2, 3}, report.Leaders)
	assert.Equal(t, 1, report.Metrics.CyclomaticComplexity)

	out, err = execute(t, "analyze", "--format", "yaml", "--preds", "linear", path)
	require.NoError(t, err)
	assert.Contains(t, out, "cyclomatic_complexity: 1")
	assert.Contains(t, out, "predecessors: linear")

	_, err = execute(t, "analyze", "--format", "xml", path)
	assert.ErrorContains(t, err, "unknown format")
}

func TestCommandErrors(t *testing.T) {
	dir := filepath.Dir(isolate(t))

	_, err := execute(t, "blocks", filepath.Join(dir, "missing.txt"))
	assert.ErrorContains(t, err, "stat file")

	_, err = execute(t, "blocks", dir)
	assert.ErrorContains(t, err, "path is a directory")

	_, err = execute(t, "cfg", "--edges", "merge", filepath.Join(dir, "prog.txt"))
	assert.ErrorContains(t, err, "invalid edge policy")
}

func TestFlagsOverrideInvalidEnv(t *testing.T) {
	path := isolate(t)
	t.Setenv("BFQ_EDGE_POLICY", "merge")

	_, err := execute(t, "metrics", path)
	assert.ErrorContains(t, err, "invalid edge policy")

	out, err := execute(t, "metrics", "--edges", "preserve", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Number of Edges (E): 3")
}

func TestCommandCache(t *testing.T) {
	path := isolate(t)
	cachePath := filepath.Join(filepath.Dir(path), "cache", "reports.msgpack")
	t.Setenv("BFQ_CACHE_ENABLED", "true")
	t.Setenv("BFQ_CACHE_PATH", cachePath)

	_, err := execute(t, "metrics", path)
	require.NoError(t, err)
	assert.FileExists(t, cachePath)

	out, err := execute(t, "metrics", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Cyclomatic Complexity (E - N + 2): 1")
}

func TestDoctorCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Using config: defaults")
	assert.Contains(t, out, "pipeline:")
	assert.NotContains(t, out, "✗")
}

func TestDoctorCommand_InvalidConfig(t *testing.T) {
	isolate(t)
	t.Setenv("BFQ_EDGE_POLICY", "merge")

	out, err := execute(t, "doctor")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "loading config")
	assert.Contains(t, out, "config:")
	assert.Contains(t, out, "Error: invalid edge policy: merge")
	assert.Contains(t, out, "skipped: invalid configuration")
}

func TestPrintHelpersOnEmptyInput(t *testing.T) {
	report := analysis.Analyze(source.FromStrings(nil), analysis.Options{})

	var buf bytes.Buffer
	printBlocks(&buf, report.Leaders, report.Blocks)
	printGraph(&buf, report.Graph)
	printMetrics(&buf, report.Metrics)
	require.NoError(t, printDataflow(&buf, report.Dataflow))

	out := buf.String()
	assert.Contains(t, out, "Blocks (0):")
	assert.Contains(t, out, "Edges (0):")
	assert.Contains(t, out, "Cyclomatic Complexity (E - N + 2): 2")
	assert.Contains(t, out, "Definitions (0):")
}

func TestScanCommand(t *testing.T) {
	dir := filepath.Dir(isolate(t))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "loop.c"), []byte("i = 0\nwhile i < 3\ni = i + 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x = 1\n"), 0644))

	out, err := execute(t, "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "prog.txt")
	assert.Contains(t, out, "src/loop.c")
	assert.NotContains(t, out, "notes.md")
	assert.Contains(t, out, "2 files analyzed, 0 failed")

	out, err = execute(t, "scan", "--json", "--ext", ".md", dir)
	require.NoError(t, err)
	var rows []scanSummary
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "notes.md", rows[0].Path)
	assert.Equal(t, 1, rows[0].Definitions)
}
