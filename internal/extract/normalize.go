package extract

import "strings"

// asciiPunct is the ASCII punctuation set removed from tag identifiers.
const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Normalize turns a phrase into a tag identifier: ASCII punctuation is
// removed and whitespace runs become single hyphens.
func Normalize(phrase string) string {
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunct, r) {
			return -1
		}
		return r
	}, phrase)
	return strings.Join(strings.Fields(stripped), "-")
}

// Tags normalizes keywords into a duplicate-free tag list, keeping rank
// order and dropping phrases that normalize to nothing.
func Tags(keywords []Keyword) []string {
	phrases := make([]string, len(keywords))
	for i, kw := range keywords {
		phrases[i] = kw.Phrase
	}
	return NormalizeAll(phrases)
}

// NormalizeAll normalizes phrases, dropping empty results and duplicates.
func NormalizeAll(phrases []string) []string {
	seen := make(map[string]struct{}, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		tag := Normalize(p)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
