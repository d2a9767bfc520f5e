package debug

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled(t *testing.T) {
	defer os.Unsetenv("DEBUG")
	defer resetForTest()

	os.Unsetenv("DEBUG")
	resetForTest()
	assert.False(t, Enabled())

	os.Setenv("DEBUG", "1")
	resetForTest()
	assert.True(t, Enabled())
}

func TestRankingFieldsEnabled(t *testing.T) {
	defer os.Unsetenv("CODE_SEARCH_DEBUG")
	defer resetForTest()

	os.Unsetenv("CODE_SEARCH_DEBUG")
	resetForTest()
	assert.False(t, RankingFieldsEnabled())

	os.Setenv("CODE_SEARCH_DEBUG", "1")
	resetForTest()
	assert.True(t, RankingFieldsEnabled())
}
