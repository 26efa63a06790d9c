package validation

import (
	"strconv"
	"strings"
)

// MaxRooms caps a room count read from speech.
const MaxRooms = 10

var numberWords = map[string]int{
	"zero": 0, "none": 0, "one": 1, "a": 1, "an": 1, "single": 1, "two": 2, "couple": 2,
	"three": 3, "four": 4, "five": 5, "six": 6, "seven": 7, "eight": 8,
	"nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

var floorOrdinals = map[string]int{
	"ground": 0, "first": 0, "1st": 0,
	"second": 1, "2nd": 1,
	"third": 2, "3rd": 2,
	"fourth": 3, "4th": 3,
	"fifth": 4, "5th": 4,
}

// ExtractRoomCount reads a number of rooms from text like "three bedrooms",
// "4" or "a studio". Counts are clamped to 1..MaxRooms.
func ExtractRoomCount(text string) (int, bool) {
	tokens := tokenize(NormalizeString(text))
	if hasToken(tokens, "studio", "efficiency") {
		return 1, true
	}
	for _, tok := range tokens {
		n, ok := readNumber(tok)
		if !ok {
			continue
		}
		// "a" and "an" only count when followed by a room noun.
		if (tok == "a" || tok == "an") && !hasToken(tokens, "room", "bedroom", "bed") {
			continue
		}
		if n < 1 {
			continue
		}
		if n > MaxRooms {
			n = MaxRooms
		}
		return n, true
	}
	return 0, false
}

// ParseStairs reads the number of flights of stairs at the pickup. Floor
// ordinals count the flights below that floor, so "third floor" is 2.
// Elevators and ground floors count as 0.
func ParseStairs(text string) (int, bool) {
	lower := strings.ToLower(NormalizeString(text))
	if lower == "" {
		return 0, false
	}
	if containsAny(lower, "no stairs", "no steps", "ground floor", "ground level", "elevator", "single story", "one story", "1 story") {
		return 0, true
	}

	tokens := tokenize(lower)
	for i, tok := range tokens {
		if floors, ok := floorOrdinals[tok]; ok && i+1 < len(tokens) && (tokens[i+1] == "floor" || tokens[i+1] == "story" || tokens[i+1] == "level") {
			return floors, true
		}
	}
	for i, tok := range tokens {
		n, ok := readNumber(tok)
		if !ok || tok == "a" || tok == "an" {
			continue
		}
		if i+1 < len(tokens) && strings.HasPrefix(tokens[i+1], "flight") {
			return n, true
		}
	}
	for _, tok := range tokens {
		if n, ok := readNumber(tok); ok && tok != "a" && tok != "an" {
			return n, true
		}
	}

	switch ParseYesNo(lower) {
	case AnswerNo:
		return 0, true
	case AnswerYes:
		return 1, true
	}
	if hasToken(tokens, "stairs", "steps", "flight") {
		return 1, true
	}
	if hasToken(tokens, "none") {
		return 0, true
	}
	return 0, false
}

func readNumber(tok string) (int, bool) {
	if n, err := strconv.Atoi(tok); err == nil && n >= 0 {
		return n, true
	}
	n, ok := numberWords[tok]
	return n, ok
}
