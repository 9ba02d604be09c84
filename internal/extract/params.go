// Package extract turns document text into ranked keyword phrases and tag
// identifiers.
package extract

import "math"

// Algorithm selects the string similarity used to drop near-duplicate
// phrases.
type Algorithm string

const (
	Jaro        Algorithm = "jaro"
	Levenshtein Algorithm = "levenshtein"
)

// Params configures one extraction call. It is a value type; callers derive
// per-document variants with the With* methods.
type Params struct {
	Language string
	// MaxPhraseLength caps the number of words in a phrase.
	MaxPhraseLength int
	// DedupThreshold drops a phrase whose similarity to an already selected
	// phrase is above it. 1 disables deduplication.
	DedupThreshold float64
	DedupAlgorithm Algorithm
	// WindowSize is the co-occurrence reach, in words, used for degree
	// scoring. 1 only counts words of the same phrase.
	WindowSize int
	// TopN limits the result size. Zero or less returns every phrase.
	TopN int
}

// DefaultParams mirrors the defaults of the configuration file.
func DefaultParams() Params {
	return Params{
		Language:        "en",
		MaxPhraseLength: 3,
		DedupThreshold:  0.75,
		DedupAlgorithm:  Jaro,
		WindowSize:      1,
		TopN:            10,
	}
}

// WithTopN returns a copy of p limited to n results.
func (p Params) WithTopN(n int) Params {
	p.TopN = n
	return p
}

// Sizing derives the number of keywords from document length.
type Sizing struct {
	Ratio float64
	Min   int
	Max   int
}

// DefaultSizing yields clamp(round(words*0.03), 3, 10).
func DefaultSizing() Sizing {
	return Sizing{Ratio: 0.03, Min: 3, Max: 10}
}

// TopN returns how many keywords a document of the given word count gets.
// Halves round to even.
func (s Sizing) TopN(words int) int {
	n := int(math.RoundToEven(float64(words) * s.Ratio))
	if n > s.Max {
		n = s.Max
	}
	if n < s.Min {
		n = s.Min
	}
	return n
}

// Keyword is a ranked phrase. Higher scores rank first.
type Keyword struct {
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}
