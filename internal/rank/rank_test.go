package rank

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blocksearch/blocksearch/internal/searchtypes"
)

func block(id, file string, start, end int, tokens []string) searchtypes.Block {
	return searchtypes.Block{
		ID:               id,
		File:             file,
		StartLine:        start,
		EndLine:          end,
		BlockUniqueTerms: len(uniq(tokens)),
		TokenizedContent: tokens,
	}
}

func uniq(tokens []string) map[string]bool {
	m := make(map[string]bool)
	for _, t := range tokens {
		m[t] = true
	}
	return m
}

func TestRankAssignsOneBasedRanksAndScores(t *testing.T) {
	blocks := []searchtypes.Block{
		block("a", "a.go", 1, 5, []string{"foo", "bar", "foo"}),
		block("b", "b.go", 1, 5, []string{"foo"}),
	}
	rankings := Rank(blocks, Hybrid, nil)
	require.Len(t, rankings, 2)
	require.Equal(t, 1, rankings["a"].Rank)
	require.Equal(t, 2, rankings["b"].Rank)
	require.Greater(t, rankings["a"].Score, rankings["b"].Score)
}

func TestRankTFIDFSelectorUsesRawScore(t *testing.T) {
	blocks := []searchtypes.Block{
		block("a", "a.go", 1, 5, []string{"foo", "bar"}),
		block("b", "b.go", 1, 5, []string{"foo"}),
	}
	rankings := Rank(blocks, TFIDF, nil)
	require.Equal(t, rankings["a"].TFIDFScore, rankings["a"].Score)
	require.Equal(t, rankings["b"].TFIDFScore, rankings["b"].Score)
}

func TestRankDeterministicTieBreakByPathThenLine(t *testing.T) {
	blocks := []searchtypes.Block{
		block("b", "b.go", 1, 5, []string{"foo"}),
		block("a", "a.go", 1, 5, []string{"foo"}),
	}
	rankings := Rank(blocks, Hybrid, nil)
	require.Equal(t, 1, rankings["a"].Rank)
	require.Equal(t, 2, rankings["b"].Rank)
}

func TestRankFileStatsFeedFileMatchRank(t *testing.T) {
	blocks := []searchtypes.Block{
		block("a", "a.go", 1, 5, []string{"foo"}),
		block("b", "b.go", 1, 5, []string{"foo"}),
	}
	fileStats := map[string]searchtypes.FileStats{
		"a.go": {UniqueTerms: 1, TotalMatches: 10},
		"b.go": {UniqueTerms: 1, TotalMatches: 1},
	}
	rankings := Rank(blocks, Hybrid, fileStats)
	require.Equal(t, 1, rankings["a"].FileMatchRank)
	require.Equal(t, 2, rankings["b"].FileMatchRank)
	require.Equal(t, 10, rankings["a"].FileTotalMatches)
}

func TestRankEmptyInput(t *testing.T) {
	rankings := Rank(nil, Hybrid, nil)
	require.Empty(t, rankings)
}
