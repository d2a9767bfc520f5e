package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "")
	require.NoError(t, err)
	require.Equal(t, "hybrid", cfg.Search.Reranker)
	require.Equal(t, 5, cfg.Search.MergeThreshold)
	require.Equal(t, dir, cfg.Project.Root)
}

func TestLoadOverridesFromKDL(t *testing.T) {
	dir := t.TempDir()
	content := `search {
    max_results 50
    reranker "bm25"
    merge_threshold 10
    allow_tests true
}
`
	path := filepath.Join(dir, ".blocksearch.kdl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	require.Equal(t, 50, cfg.Search.MaxResults)
	require.Equal(t, "bm25", cfg.Search.Reranker)
	require.Equal(t, 10, cfg.Search.MergeThreshold)
	require.True(t, cfg.Search.AllowTests)
}
