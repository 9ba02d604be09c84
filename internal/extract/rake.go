package extract

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rake is a RAKE keyword extractor: candidate phrases are runs of content
// words between stop words, scored by the sum of degree/frequency of their
// words.
type Rake struct {
	stopwords map[string]struct{}
}

// NewRake returns an extractor for language. Only "en" is supported.
func NewRake(language string) (*Rake, error) {
	switch strings.ToLower(language) {
	case "en", "english":
		return &Rake{stopwords: english}, nil
	default:
		return nil, fmt.Errorf("extract: unsupported language %q", language)
	}
}

type candidate struct {
	words []string
	count int
}

// Extract returns the ranked keyword phrases of text.
func (r *Rake) Extract(text string, p Params) []Keyword {
	maxLen := p.MaxPhraseLength
	if maxLen <= 0 {
		maxLen = 3
	}
	window := p.WindowSize
	if window < 1 {
		window = 1
	}

	freq := map[string]int{}
	degree := map[string]int{}
	candidates := map[string]*candidate{}

	for _, sentence := range splitSentences(text) {
		tokens := splitWords(sentence)
		stop := make([]bool, len(tokens))
		for i, tok := range tokens {
			stop[i] = r.isStop(tok)
		}

		for _, span := range phraseSpans(stop, maxLen) {
			words := tokens[span[0]:span[1]]
			for k := span[0]; k < span[1]; k++ {
				w := tokens[k]
				freq[w]++
				degree[w] += len(words) - 1 + neighbours(stop, k, span, window)
			}
			key := strings.Join(words, " ")
			c, ok := candidates[key]
			if !ok {
				c = &candidate{words: words}
				candidates[key] = c
			}
			c.count++
		}
	}

	wordScore := make(map[string]float64, len(freq))
	for w, f := range freq {
		wordScore[w] = float64(degree[w]+f) / float64(f)
	}

	ranked := make([]Keyword, 0, len(candidates))
	counts := make(map[string]int, len(candidates))
	for key, c := range candidates {
		var score float64
		for _, w := range c.words {
			score += wordScore[w]
		}
		ranked = append(ranked, Keyword{Phrase: key, Score: score})
		counts[key] = c.count
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if counts[a.Phrase] != counts[b.Phrase] {
			return counts[a.Phrase] > counts[b.Phrase]
		}
		return a.Phrase < b.Phrase
	})

	return dedupe(ranked, p)
}

func dedupe(ranked []Keyword, p Params) []Keyword {
	sim := similarity(p.DedupAlgorithm)
	var out []Keyword
	for _, kw := range ranked {
		if p.TopN > 0 && len(out) >= p.TopN {
			break
		}
		dup := false
		if p.DedupThreshold < 1 {
			for _, kept := range out {
				if sim(kw.Phrase, kept.Phrase) > p.DedupThreshold {
					dup = true
					break
				}
			}
		}
		if !dup {
			out = append(out, kw)
		}
	}
	return out
}

func (r *Rake) isStop(word string) bool {
	if utf8.RuneCountInString(word) <= 2 {
		return true
	}
	if _, ok := r.stopwords[word]; ok {
		return true
	}
	return strings.IndexFunc(word, func(c rune) bool { return !unicode.IsDigit(c) }) < 0
}

// phraseSpans returns [start, end) ranges of consecutive non-stop tokens,
// cut into pieces of at most maxLen tokens.
func phraseSpans(stop []bool, maxLen int) [][2]int {
	var spans [][2]int
	start := -1
	flush := func(end int) {
		for s := start; s < end; s += maxLen {
			e := s + maxLen
			if e > end {
				e = end
			}
			spans = append(spans, [2]int{s, e})
		}
		start = -1
	}
	for i, s := range stop {
		switch {
		case s && start >= 0:
			flush(i)
		case !s && start < 0:
			start = i
		}
	}
	if start >= 0 {
		flush(len(stop))
	}
	return spans
}

// neighbours counts content words within window positions of k that lie
// outside the phrase span.
func neighbours(stop []bool, k int, span [2]int, window int) int {
	if window <= 1 {
		return 0
	}
	n := 0
	for j := k - window + 1; j < k+window; j++ {
		if j < 0 || j >= len(stop) || (j >= span[0] && j < span[1]) {
			continue
		}
		if !stop[j] {
			n++
		}
	}
	return n
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(c rune) bool {
		if c == '\n' {
			return true
		}
		return unicode.IsPunct(c) && c != '\'' && c != '-' && c != '_'
	})
}

func splitWords(sentence string) []string {
	fields := strings.FieldsFunc(sentence, func(c rune) bool {
		return !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '\'' || c == '-' || c == '_')
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.Trim(strings.ToLower(f), "'-_")
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
