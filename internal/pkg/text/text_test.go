package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountRunes(t *testing.T) {
	assert.Equal(t, 5, CountRunes("hello"))
	assert.Equal(t, 4, CountRunes("ホテル開"))
	assert.Equal(t, 0, CountRunes(""))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\t b \n\n c  "))
	assert.Equal(t, "", CollapseWhitespace("   \n\t "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "ホテ", Truncate("ホテル", 2))
}

func TestTokens(t *testing.T) {
	got := Tokens("New Hotel Development in Austin, TX!")
	assert.Equal(t, []string{"new", "hotel", "development", "austin"}, got)

	assert.Empty(t, Tokens("a an at"))
	assert.Empty(t, Tokens(""))
}

func TestJaccardSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, JaccardSimilarity("New Hotel in Austin", "new hotel in austin"), 0.001)
	assert.InDelta(t, 1.0, JaccardSimilarity("", ""), 0.001)
	assert.InDelta(t, 0.0, JaccardSimilarity("hotel development", "zoning dispute"), 0.001)

	sim := JaccardSimilarity(
		"Marriott announces new 200-room hotel in downtown Austin",
		"Marriott announces new hotel in downtown Austin area",
	)
	assert.Greater(t, sim, 0.6)
	assert.Less(t, sim, 1.0)
}

func TestJaccardTokens(t *testing.T) {
	a := Tokens("New Hotel in Austin")
	b := Tokens("new hotel in austin")
	assert.InDelta(t, 1.0, JaccardTokens(a, b), 0.001)

	assert.InDelta(t, 1.0, JaccardTokens(nil, nil), 0.001)
	assert.InDelta(t, 0.0, JaccardTokens(a, nil), 0.001)

	// Pre-tokenized input must score exactly like the string form.
	x := "Marriott announces new 200-room hotel in downtown Austin"
	y := "Marriott announces new hotel in downtown Austin area"
	assert.InDelta(t, JaccardSimilarity(x, y), JaccardTokens(Tokens(x), Tokens(y)), 0.001)
}
