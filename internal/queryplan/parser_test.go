package queryplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImplicitAnd(t *testing.T) {
	plan, err := Parse("foo bar", false)
	require.NoError(t, err)
	require.Len(t, plan.Terms, 2)

	matched := map[int]bool{0: true, 1: true}
	assert.True(t, plan.AST.Evaluate(matched))
	assert.False(t, plan.AST.Evaluate(map[int]bool{0: true}))
}

func TestParseOr(t *testing.T) {
	plan, err := Parse("cache OR miss", false)
	require.NoError(t, err)
	require.Len(t, plan.Terms, 2)

	assert.True(t, plan.AST.Evaluate(map[int]bool{0: true}))
	assert.True(t, plan.AST.Evaluate(map[int]bool{1: true}))
	assert.False(t, plan.AST.Evaluate(map[int]bool{}))
}

func TestParseNotExcludesEverywhere(t *testing.T) {
	plan, err := Parse("foo -bar", false)
	require.NoError(t, err)
	require.Len(t, plan.Terms, 2)
	assert.True(t, plan.Terms[1].Excluded)

	assert.True(t, plan.AST.Evaluate(map[int]bool{0: true}))
	assert.False(t, plan.AST.Evaluate(map[int]bool{0: true, 1: true}))
}

func TestParseParens(t *testing.T) {
	plan, err := Parse("(foo OR bar) AND baz", false)
	require.NoError(t, err)
	require.Len(t, plan.Terms, 3)

	assert.True(t, plan.AST.Evaluate(map[int]bool{0: true, 2: true}))
	assert.False(t, plan.AST.Evaluate(map[int]bool{0: true}))
}

func TestParseQuotedPhrase(t *testing.T) {
	plan, err := Parse(`"hello world" AND foo`, false)
	require.NoError(t, err)
	require.Len(t, plan.Terms, 2)
	assert.Equal(t, "hello world", plan.Terms[0].Surface)
}

func TestParseStopwordsDropped(t *testing.T) {
	plan, err := Parse("the foo and bar", false)
	require.NoError(t, err)
	require.Len(t, plan.Terms, 2)
	assert.True(t, plan.AST.Evaluate(map[int]bool{0: true, 1: true}))
}

func TestParseEmptyIsError(t *testing.T) {
	_, err := Parse("   ", false)
	assert.Error(t, err)
}

func TestParseUnbalancedParens(t *testing.T) {
	_, err := Parse("(foo AND bar", false)
	assert.Error(t, err)
}

func TestExactModeSkipsStemming(t *testing.T) {
	plan, err := Parse("Connect", true)
	require.NoError(t, err)
	require.Len(t, plan.Terms, 1)
	assert.Equal(t, "Connect", plan.Terms[0].Surface)
}

func TestBuildPatternsSharesSourcePerStem(t *testing.T) {
	plan, err := Parse("run running", false)
	require.NoError(t, err)
	patterns := BuildPatterns(plan)
	require.Len(t, patterns, 1)
	assert.Len(t, patterns[0].Terms, 1) // both fold to the same stem/index
}

func TestRequiredFlag(t *testing.T) {
	plan, err := Parse("foo OR bar", false)
	require.NoError(t, err)
	assert.False(t, plan.Terms[0].Required)
	assert.False(t, plan.Terms[1].Required)

	plan2, err := Parse("foo AND bar", false)
	require.NoError(t, err)
	assert.True(t, plan2.Terms[0].Required)
	assert.True(t, plan2.Terms[1].Required)
}
