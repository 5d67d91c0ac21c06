package evaluation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextsMatchSharedAnchors(t *testing.T) {
	a := "Das Wort wurde 2017 in den Duden aufgenommen"
	b := "2017 Duden Aufnahme"

	assert.True(t, TextsMatch(a, b),
		"texts sharing the year and the Duden anchor should match")
	assert.True(t, TextsMatch(b, a), "matching must be symmetric")
}

func TestTextsMatchIdenticalText(t *testing.T) {
	text := "Zum ersten Mal verwendete der Karikaturist Muhsin Omurca die Bezeichnung 1996 in einem Cartoon"
	assert.True(t, TextsMatch(text, text))
}

func TestTextsMatchKeyTermGateRejects(t *testing.T) {
	a := "Der Karikaturist Muhsin Omurca zeichnete 1996"
	b := "Die Hauptstadt Berlin liegt 2024 an der Spree"

	assert.False(t, TextsMatch(a, b),
		"both texts carry key terms but share none, the gate must reject")
}

func TestTextsMatchNoSharedWindow(t *testing.T) {
	// Neither side has key terms, so only the window comparison runs.
	a := "irgendein kleiner text über verschiedene dinge"
	b := "ganz anderer inhalt steht hier jetzt"

	assert.False(t, TextsMatch(a, b))
}

func TestTextsMatchEmptyInput(t *testing.T) {
	assert.False(t, TextsMatch("", "etwas"))
	assert.False(t, TextsMatch("etwas", ""))
	assert.False(t, TextsMatch("", ""))
	assert.False(t, TextsMatch("...", "!!!"), "punctuation-only input has no tokens")
}

func TestTokenizeStripsPunctuation(t *testing.T) {
	got := tokenize(`Die Bezeichnung „Bio-Deutscher“ erschien 1996, in der taz.`)
	assert.Contains(t, got, "bio-deutscher", "inner hyphens survive, quotes do not")
	assert.Contains(t, got, "1996")
	assert.Contains(t, got, "taz")
	for _, w := range got {
		assert.NotContains(t, w, "„")
		assert.False(t, strings.HasSuffix(w, ","))
	}
}

func TestKeyTermsExtraction(t *testing.T) {
	terms := keyTerms("Seit den 1990er Jahren bezeichnet biodeutsch ethnische Deutsche, laut Duden.")

	assert.True(t, terms["1990er"], "decade tokens are key terms")
	assert.True(t, terms["jahren"], "capitalized source tokens are key terms")
	assert.True(t, terms["biodeutsch"], "curated vocabulary is a key term even lowercased")
	assert.True(t, terms["duden"])
	assert.False(t, terms["ethnische"], "plain lowercase words are not key terms")
}

func TestJaccard(t *testing.T) {
	a := map[string]bool{"x": true, "y": true}
	b := map[string]bool{"y": true, "z": true}
	assert.InDelta(t, 1.0/3.0, jaccard(a, b), 1e-9)
	assert.Equal(t, 0.0, jaccard(nil, nil))
	assert.Equal(t, 0.0, jaccard(a, map[string]bool{}))
}

func TestMaxWindowOverlapShortTexts(t *testing.T) {
	// The window shrinks to the shorter token sequence.
	a := []string{"wurde", "2017", "in", "den", "duden", "aufgenommen"}
	b := []string{"2017", "duden", "aufnahme"}

	got := maxWindowOverlap(a, b)
	assert.GreaterOrEqual(t, got, 0.3, "best window shares one of three words")
	assert.Less(t, got, 0.4)
}
