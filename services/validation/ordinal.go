package validation

// ordinalIndex maps each accepted phrasing to a zero-based choice index.
var ordinalIndex = map[string]int{
	"first": 0, "1st": 0, "1": 0, "one": 0,
	"second": 1, "2nd": 1, "2": 1, "two": 1,
	"third": 2, "3rd": 2, "3": 2, "three": 2,
}

var ordinalFillers = map[string]bool{
	"the": true, "option": true, "number": true, "choice": true, "slot": true,
	"please": true, "i'll": true, "take": true, "i": true, "want": true,
	"pick": true, "go": true, "with": true, "a": true, "let's": true, "do": true,
	"that": true, "is": true, "fine": true, "um": true, "uh": true,
}

// ParseOrdinalChoice reads which of the offered options the caller picked.
// "first", "1st" and "1" (and the second and third forms) are recognized
// case-insensitively; the result is zero-based, so "second" returns 1.
// Filler such as "the ... one, please" is tolerated; any other word, or two
// different picks, makes the input invalid and ok is false.
func ParseOrdinalChoice(text string) (index int, ok bool) {
	tokens := tokenize(text)
	var picks []string
	for _, tok := range tokens {
		if _, known := ordinalIndex[tok]; known {
			picks = append(picks, tok)
			continue
		}
		if ordinalFillers[tok] {
			continue
		}
		return 0, false
	}

	// "the second one": a trailing "one" is a pronoun, not a pick.
	if len(picks) > 1 {
		filtered := picks[:0]
		for _, p := range picks {
			if p != "one" {
				filtered = append(filtered, p)
			}
		}
		picks = filtered
	}
	if len(picks) == 0 {
		return 0, false
	}

	index = ordinalIndex[picks[0]]
	for _, p := range picks[1:] {
		if ordinalIndex[p] != index {
			return 0, false
		}
	}
	return index, true
}
