package matching

import "strings"

// Similarity returns the Jaccard similarity of the word sets of a and b,
// ignoring case and surrounding whitespace. Empty input scores 0, even
// when both sides are empty.
func Similarity(a, b string) float64 {
	a = strings.TrimSpace(strings.ToLower(a))
	b = strings.TrimSpace(strings.ToLower(b))

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	wordsA := wordSet(a)
	wordsB := wordSet(b)

	shared := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			shared++
		}
	}
	union := len(wordsA) + len(wordsB) - shared

	return float64(shared) / float64(union)
}

// wordSet splits s on whitespace and collapses duplicate words.
func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
