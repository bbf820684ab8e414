// Package text provides small text helpers shared by deduplication and
// extraction: whitespace collapsing, tokenization, and set similarity.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CountRunes returns the number of runes in s. Byte length overcounts
// multibyte titles, which matters for prompt budgets.
func CountRunes(s string) int {
	return utf8.RuneCountInString(s)
}

// CollapseWhitespace trims s and replaces every run of whitespace, including
// newlines and tabs, with a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns at most max runes of s, never splitting a rune.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// Tokens lowercases s and returns its alphanumeric words of three or more
// characters. Short words carry almost no signal for title similarity.
func Tokens(s string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() >= 3 {
			tokens = append(tokens, b.String())
		}
		b.Reset()
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// JaccardSimilarity returns |A∩B| / |A∪B| over the token sets of a and b.
// Two empty token sets are considered identical.
func JaccardSimilarity(a, b string) float64 {
	return JaccardTokens(Tokens(a), Tokens(b))
}

// JaccardTokens is JaccardSimilarity over pre-tokenized input, for callers
// that tokenize once and compare many times.
func JaccardTokens(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
