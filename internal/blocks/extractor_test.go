package blocks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blocksearch/blocksearch/internal/queryplan"
	"github.com/blocksearch/blocksearch/internal/searchtypes"
	"github.com/blocksearch/blocksearch/internal/structure"
)

func TestExtractFileFindsEnclosingFunction(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.go")
	src := "package main\n\nfunc foo() {\n\tbar := 1\n\t_ = bar\n}\n"
	require.NoError(t, os.WriteFile(file, []byte(src), 0o644))

	plan, err := queryplan.Parse("bar", false)
	require.NoError(t, err)

	hits := searchtypes.NewFileHits()
	hits.Add(0, 4)

	e := New(structure.NewRegistry())
	extraction, err := e.ExtractFile(file, hits, plan, nil)
	require.NoError(t, err)
	require.Len(t, extraction.Blocks, 1)
	blk := extraction.Blocks[0]
	require.Equal(t, "function", blk.NodeType)
	require.Equal(t, 3, blk.StartLine)
	require.Equal(t, 6, blk.EndLine)
}

func TestExtractFileFilenameMatchSynthesizesWholeFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.rs")
	src := "fn setup() {\n\tprintln!(\"hi\");\n}\n"
	require.NoError(t, os.WriteFile(file, []byte(src), 0o644))

	plan, err := queryplan.Parse("config", false)
	require.NoError(t, err)

	hits := searchtypes.NewFileHits()
	e := New(structure.NewRegistry())
	extraction, err := e.ExtractFile(file, hits, plan, map[int]bool{0: true})
	require.NoError(t, err)
	require.Len(t, extraction.Blocks, 1)
	require.True(t, extraction.Blocks[0].MatchedByFilename)
	require.Equal(t, "file", extraction.Blocks[0].NodeType)
}

func TestExtractFileDropsBlockFailingAST(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.go")
	src := "package main\n\nfunc foo() {\n\tbar := 1\n\t_ = bar\n}\n\nfunc baz() {\n\tqux := 1\n\t_ = qux\n}\n"
	require.NoError(t, os.WriteFile(file, []byte(src), 0o644))

	plan, err := queryplan.Parse("bar AND qux", false)
	require.NoError(t, err)

	hits := searchtypes.NewFileHits()
	hits.Add(0, 4) // bar, inside foo
	hits.Add(1, 9) // qux, inside baz

	e := New(structure.NewRegistry())
	extraction, err := e.ExtractFile(file, hits, plan, nil)
	require.NoError(t, err)
	require.Empty(t, extraction.Blocks, "neither block alone satisfies bar AND qux")
}
