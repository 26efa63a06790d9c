// Package validation turns raw spoken or typed caller input into canonical
// values. Nothing here performs I/O.
package validation

import (
	"strings"
	"unicode"
)

var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'“':  '”',
	'‘':  '’',
}

// NormalizeString trims surrounding whitespace and any matched pairs of quote
// characters wrapping the whole value. Interior quotes are kept, so
// NormalizeString("it's mine") is unchanged. The function is idempotent.
func NormalizeString(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		runes := []rune(s)
		if len(runes) < 2 {
			return s
		}
		closing, ok := quotePairs[runes[0]]
		if !ok || runes[len(runes)-1] != closing {
			return s
		}
		s = strings.TrimSpace(string(runes[1 : len(runes)-1]))
	}
}

// tokenize lowercases text and splits it into alphanumeric words, keeping
// apostrophes inside words ("don't").
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// collapseSpaces replaces runs of whitespace with one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func hasToken(tokens []string, words ...string) bool {
	for _, t := range tokens {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}
