package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"machine learning": "machine-learning",
		"rust":             "rust",
		"C++ templates":    "C-templates",
		"  spaced   out  ": "spaced-out",
		"don't panic!":     "dont-panic",
		"state-of-the-art": "stateoftheart",
		"":                 "",
		"...":              "",
		"café au lait":     "café-au-lait",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalizeAll_DedupesAndDropsEmpty(t *testing.T) {
	got := NormalizeAll([]string{"rust", "Rust!", "rust", "??", "cli tools"})
	assert.Equal(t, []string{"rust", "Rust", "cli-tools"}, got)
}

func TestSizing_TopN(t *testing.T) {
	s := DefaultSizing()
	cases := map[int]int{
		0:     3,
		50:    3,
		116:   3,
		117:   4,
		150:   4,
		200:   6,
		333:   10,
		10000: 10,
	}
	for words, want := range cases {
		assert.Equal(t, want, s.TopN(words), "TopN(%d)", words)
	}
}

func TestParams_WithTopNCopies(t *testing.T) {
	base := DefaultParams()
	p := base.WithTopN(4)
	assert.Equal(t, 4, p.TopN)
	assert.Equal(t, 10, base.TopN)
}

func TestNewRake_UnsupportedLanguage(t *testing.T) {
	_, err := NewRake("xx")
	assert.Error(t, err)
}

func TestRake_Extract(t *testing.T) {
	r, err := NewRake("en")
	require.NoError(t, err)

	text := "Rust ownership rules prevent data races. " +
		"The borrow checker enforces rust ownership rules at compile time.\n" +
		"Compile time checks are cheap."

	kws := r.Extract(text, DefaultParams().WithTopN(3))
	require.Len(t, kws, 3)
	assert.Equal(t, "rust ownership rules", kws[0].Phrase)
	for i := 1; i < len(kws); i++ {
		assert.GreaterOrEqual(t, kws[i-1].Score, kws[i].Score)
	}
}

func TestRake_Deterministic(t *testing.T) {
	r, _ := NewRake("en")
	text := "alpha beta gamma. delta epsilon. zeta eta theta iota."
	first := r.Extract(text, DefaultParams())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Extract(text, DefaultParams()))
	}
}

func TestRake_StopWordsAndShortWordsSplitPhrases(t *testing.T) {
	r, _ := NewRake("en")
	p := DefaultParams().WithTopN(0)
	p.DedupThreshold = 1
	kws := r.Extract("the cat is on the mat with 42 dogs", p)
	var phrases []string
	for _, k := range kws {
		phrases = append(phrases, k.Phrase)
	}
	assert.ElementsMatch(t, []string{"cat", "mat", "dogs"}, phrases)
}

func TestRake_MaxPhraseLength(t *testing.T) {
	r, _ := NewRake("en")
	p := DefaultParams().WithTopN(0)
	p.MaxPhraseLength = 2
	p.DedupThreshold = 1
	kws := r.Extract("quick brown foxes jumped", p)
	var phrases []string
	for _, k := range kws {
		phrases = append(phrases, k.Phrase)
	}
	assert.ElementsMatch(t, []string{"quick brown", "foxes jumped"}, phrases)
}

func TestRake_DedupDropsNearDuplicates(t *testing.T) {
	r, _ := NewRake("en")
	p := DefaultParams().WithTopN(0)
	text := "database indexes. database indexing."

	p.DedupThreshold = 1
	assert.Len(t, r.Extract(text, p), 2)

	p.DedupThreshold = 0.75
	assert.Len(t, r.Extract(text, p), 1)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, jaroWinkler("rust", "rust"), 1e-9)
	assert.InDelta(t, 0.0, jaroWinkler("abc", "xyz"), 1e-9)
	assert.InDelta(t, 0.961, jaroWinkler("martha", "marhta"), 1e-3)
	assert.InDelta(t, 0.813, jaroWinkler("dixon", "dicksonx"), 1e-3)

	assert.InDelta(t, 1.0, levenshteinRatio("", ""), 1e-9)
	assert.InDelta(t, 1-3.0/7.0, levenshteinRatio("kitten", "sitting"), 1e-9)
	assert.Equal(t, 3, levenshtein([]rune("kitten"), []rune("sitting")))
}
