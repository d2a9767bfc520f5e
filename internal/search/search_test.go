package search_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blocksearch/blocksearch/internal/search"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSearchFindsFunctionByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n\nfunc Widget() {\n\tprintln(\"hi\")\n}\n")

	engine := search.NewEngine()
	out, err := engine.Search(context.Background(), search.Options{
		Pattern:         "widget",
		Paths:           []string{dir},
		FrequencySearch: true,
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.Equal(t, "function", out.Results[0].NodeType)
}

func TestSearchAndQueryRequiresBothTerms(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package main\n\nfunc Alpha() {}\n")
	writeFile(t, dir, "b.go", "package main\n\nfunc Alpha() { Beta() }\n\nfunc Beta() {}\n")

	engine := search.NewEngine()
	out, err := engine.Search(context.Background(), search.Options{
		Pattern:         "alpha AND beta",
		Paths:           []string{dir},
		FrequencySearch: true,
	})
	require.NoError(t, err)
	for _, r := range out.Results {
		require.Equal(t, "b.go", filepath.Base(r.File))
	}
	require.NotEmpty(t, out.Results)
}

func TestSearchFilenameMatching(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.go", "package main\n\nfunc Load() {}\n")

	engine := search.NewEngine()
	out, err := engine.Search(context.Background(), search.Options{
		Pattern:         "config",
		Paths:           []string{dir},
		FrequencySearch: true,
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.True(t, out.Results[0].MatchedByFilename)

	excluded, err := engine.Search(context.Background(), search.Options{
		Pattern:          "config",
		Paths:            []string{dir},
		FrequencySearch:  true,
		ExcludeFilenames: true,
	})
	require.NoError(t, err)
	require.Empty(t, excluded.Results)
}

func TestSearchMaxResultsLimitsOutput(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		writeFile(t, dir, "f"+string(rune('a'+i))+".go", "package main\n\nfunc Needle() {}\n")
	}

	engine := search.NewEngine()
	out, err := engine.Search(context.Background(), search.Options{
		Pattern:         "needle",
		Paths:           []string{dir},
		FrequencySearch: true,
		MaxResults:      1,
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.NotEmpty(t, out.SkippedFiles)
}

func TestSearchFilesOnlyElidesCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package main\n\nfunc Needle() {}\nfunc NeedleTwo() {}\n")

	engine := search.NewEngine()
	out, err := engine.Search(context.Background(), search.Options{
		Pattern:         "needle",
		Paths:           []string{dir},
		FrequencySearch: true,
		FilesOnly:       true,
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.Empty(t, out.Results[0].Code)
}

func TestSearchSessionCacheDedupesSecondCall(t *testing.T) {
	cacheDir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheDir)
	t.Setenv("HOME", cacheDir)

	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package main\n\nfunc Needle() {}\n")

	sess := "test-session"
	engine := search.NewEngine()
	opts := search.Options{
		Pattern:         "needle",
		Paths:           []string{dir},
		FrequencySearch: true,
		Session:         &sess,
	}

	first, err := engine.Search(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, first.Results, 1)

	second, err := engine.Search(context.Background(), opts)
	require.NoError(t, err)
	require.Empty(t, second.Results)
	require.Positive(t, second.CachedBlocksSkipped)
}

func TestSearchEmptyPatternReturnsError(t *testing.T) {
	dir := t.TempDir()
	engine := search.NewEngine()
	_, err := engine.Search(context.Background(), search.Options{
		Pattern: "   ",
		Paths:   []string{dir},
	})
	require.Error(t, err)
}

func TestSearchCancelledContextReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package main\n\nfunc Needle() {}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := search.NewEngine()
	out, err := engine.Search(ctx, search.Options{
		Pattern:         "needle",
		Paths:           []string{dir},
		FrequencySearch: true,
	})
	require.Error(t, err)
	require.Empty(t, out.Results)
}
