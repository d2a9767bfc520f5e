package limiter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blocksearch/blocksearch/internal/searchtypes"
)

func result(file string, start, end, rank int, code string) searchtypes.Result {
	return searchtypes.Result{
		Block:   searchtypes.Block{ID: searchtypes.NewBlockID(file, start, end), File: file, StartLine: start, EndLine: end, Code: code},
		Ranking: searchtypes.Ranking{Rank: rank},
	}
}

func TestApplyLimitsNoLimitsReturnsAll(t *testing.T) {
	out := ApplyLimits([]searchtypes.Result{result("a.go", 1, 5, 1, "x")}, 0, 0, 0)
	require.Len(t, out.Results, 1)
	require.Nil(t, out.LimitsApplied)
}

func TestApplyLimitsMaxResultsTruncatesAndReportsSkipped(t *testing.T) {
	results := []searchtypes.Result{
		result("a.go", 1, 5, 1, "x"),
		result("b.go", 1, 5, 2, "y"),
	}
	out := ApplyLimits(results, 1, 0, 0)
	require.Len(t, out.Results, 1)
	require.Equal(t, "a.go", out.Results[0].File)
	require.Equal(t, []string{"b.go"}, out.SkippedFiles)
}

func TestApplyLimitsMaxBytesStopsEarly(t *testing.T) {
	results := []searchtypes.Result{
		result("a.go", 1, 5, 1, "0123456789"),
		result("b.go", 1, 5, 2, "0123456789"),
	}
	out := ApplyLimits(results, 0, 15, 0)
	require.Len(t, out.Results, 1)
}

func TestMergeRankedBlocksJoinsAdjacentBlocksInSameFile(t *testing.T) {
	results := []searchtypes.Result{
		result("a.go", 1, 5, 2, "first"),
		result("a.go", 8, 12, 1, "second"),
	}
	merged, err := MergeRankedBlocks(results, 5, nil)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	require.Equal(t, 1, merged[0].StartLine)
	require.Equal(t, 12, merged[0].EndLine)
	require.Equal(t, 1, merged[0].Rank, "merged block keeps the best (lowest) rank")
}

func TestMergeRankedBlocksLeavesDistantBlocksSeparate(t *testing.T) {
	results := []searchtypes.Result{
		result("a.go", 1, 5, 1, "first"),
		result("a.go", 50, 55, 2, "second"),
	}
	merged, err := MergeRankedBlocks(results, 5, nil)
	require.NoError(t, err)
	require.Len(t, merged, 2)
}

func TestMergeRankedBlocksChainsThroughIntermediateBlock(t *testing.T) {
	results := []searchtypes.Result{
		result("a.go", 1, 5, 1, "a"),
		result("a.go", 8, 12, 2, "b"),
		result("a.go", 15, 20, 3, "c"),
	}
	merged, err := MergeRankedBlocks(results, 3, nil)
	require.NoError(t, err)
	require.Len(t, merged, 1, "each gap is within threshold so all three chain together")
	require.Equal(t, 1, merged[0].StartLine)
	require.Equal(t, 20, merged[0].EndLine)
}

func TestMergeRankedBlocksRereadsSourceForMergedCode(t *testing.T) {
	lines := []string{"l1", "l2", "l3", "l4", "l5", "l6"}
	readFile := func(path string) ([]string, error) {
		return lines, nil
	}
	results := []searchtypes.Result{
		result("a.go", 1, 2, 1, "stale"),
		result("a.go", 4, 6, 2, "stale"),
	}
	merged, err := MergeRankedBlocks(results, 5, readFile)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	require.Equal(t, "l1\nl2\nl3\nl4\nl5\nl6", merged[0].Code)
}

func TestApplyLimitsDeterministicOrderByRank(t *testing.T) {
	results := []searchtypes.Result{
		result("b.go", 1, 5, 2, "y"),
		result("a.go", 1, 5, 1, "x"),
	}
	out := ApplyLimits(results, 0, 0, 0)
	require.Equal(t, "a.go", out.Results[0].File)
	require.Equal(t, "b.go", out.Results[1].File)
}

func TestCountTokensDeterministic(t *testing.T) {
	require.Equal(t, countTokens("foo bar"), countTokens("baz qux"))
	require.Equal(t, 2, countTokens("foo bar"))
	require.Equal(t, 4, countTokens("foo(bar)"), "each punctuation rune is its own token")
	require.Equal(t, 0, countTokens(""))
}
