package validation

import (
	"strings"
)

var digitWords = [10]string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

// spokenDigits maps digit words and the homophones speech recognition
// produces for them.
var spokenDigits = map[string]string{
	"zero": "0", "oh": "0", "o": "0",
	"one": "1", "won": "1",
	"two": "2", "too": "2", "to": "2", "tu": "2",
	"three": "3", "tree": "3",
	"four": "4", "for": "4", "fore": "4",
	"five": "5", "six": "6", "seven": "7",
	"eight": "8", "ate": "8",
	"nine": "9",
}

// DigitsToSpoken spells each numeral of digits as a word, space separated,
// for reading a number back to the caller. Characters other than 0-9 are
// dropped, so "(281) 743" becomes "two eight one seven four three".
func DigitsToSpoken(digits string) string {
	words := make([]string, 0, len(digits))
	for _, r := range digits {
		if r >= '0' && r <= '9' {
			words = append(words, digitWords[r-'0'])
		}
	}
	return strings.Join(words, " ")
}

// ExtractDigits pulls the digit sequence out of spoken or typed input.
// Digit words and their homophones are converted; every other word is noise.
func ExtractDigits(text string) string {
	var b strings.Builder
	for _, tok := range tokenize(text) {
		if d, ok := spokenDigits[tok]; ok {
			b.WriteString(d)
			continue
		}
		for _, r := range tok {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// onlyDigits strips everything but 0-9.
func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
