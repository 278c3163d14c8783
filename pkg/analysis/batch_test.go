package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-blockflow/pkg/cache"
)

func TestRunner_AnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	programs := map[string]string{
		"a.c": "x = 1\nif x > 0\ny = 2\n",
		"b.c": calc,
		"c.c": "",
	}
	var paths []string
	for _, name := range []string{"a.c", "b.c", "c.c"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(programs[name]), 0644))
		paths = append(paths, p)
	}
	paths = append(paths, filepath.Join(dir, "missing.c"))

	c := cache.New(cache.Options[*Report]{})
	results := NewRunner(Options{}, WithCache(c)).AnalyzeFiles(context.Background(), paths, 2)

	require.Len(t, results, 4)
	for i, res := range results {
		assert.Equal(t, paths[i], res.Path, "results keep input order")
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, paths[0], results[0].Report.Source)
	assert.Len(t, results[0].Report.Blocks, 3)

	require.NoError(t, results[1].Err)
	assert.Len(t, results[1].Report.Blocks, 5)

	require.NoError(t, results[2].Err)
	assert.Equal(t, 2, results[2].Report.Metrics.CyclomaticComplexity)

	assert.ErrorIs(t, results[3].Err, os.ErrNotExist)
	assert.Nil(t, results[3].Report)

	assert.Equal(t, 3, c.Len())
}

func TestRunner_AnalyzeFilesCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.c")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewRunner(Options{}).AnalyzeFiles(ctx, []string{path, path}, 0)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
}
