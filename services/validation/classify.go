package validation

import (
	"strings"
	"unicode"

	"moveline/models"
)

// ParseMoveType maps a spoken move category onto a MoveType. Longer phrases
// are checked first so "long distance" never reads as "local".
func ParseMoveType(text string) (models.MoveType, bool) {
	lower := strings.ToLower(NormalizeString(text))
	switch {
	case containsAny(lower, "long distance", "long-distance", "out of state", "interstate", "cross country"):
		return models.MoveLongDistance, true
	case containsAny(lower, "junk", "haul away", "trash", "debris"):
		return models.MoveJunkRemoval, true
	case containsAny(lower, "in-home", "in home", "inhome", "rearrange", "within the house", "within my house"):
		return models.MoveInHomeService, true
	case containsAny(lower, "local", "same city", "across town", "in town"):
		return models.MoveLocal, true
	}
	return "", false
}

// ParsePropertyType reads residential vs commercial.
func ParsePropertyType(text string) (models.PropertyType, bool) {
	lower := strings.ToLower(NormalizeString(text))
	switch {
	case containsAny(lower, "commercial", "business", "office", "warehouse", "store", "shop"):
		return models.PropertyCommercial, true
	case containsAny(lower, "residen", "home", "house", "apartment", "condo", "personal"):
		return models.PropertyResidential, true
	}
	return "", false
}

// ParseLocationType reads the kind of building at an address. Residential
// properties are a house or an apartment; commercial ones an office or a
// warehouse.
func ParseLocationType(text string, property models.PropertyType) (string, bool) {
	tokens := tokenize(NormalizeString(text))
	if property == models.PropertyCommercial {
		switch {
		case hasToken(tokens, "office", "offices", "suite"):
			return "office", true
		case hasToken(tokens, "warehouse", "storage", "garage"):
			return "warehouse", true
		}
		return "", false
	}
	switch {
	case hasToken(tokens, "apartment", "apt", "condo", "flat", "unit"):
		return "apartment", true
	case hasToken(tokens, "house", "home", "townhouse", "townhome"):
		return "house", true
	}
	return "", false
}

var transferPhrases = []string{
	"transfer me", "transfer now", "talk to manager", "talk to a manager", "talk to the manager",
	"speak to manager", "speak to a manager", "speak to the manager", "speak with a manager",
	"speak to someone", "talk to someone", "speak to a person", "talk to a person",
	"real person", "live person", "get me a manager", "connect me",
}

// transferWords only count when said on their own, give or take a few polite
// words ("operator!", "manager please", "I want a human").
var transferWords = []string{"operator", "human", "representative", "agent", "manager"}

var transferFillers = map[string]bool{
	"please": true, "a": true, "an": true, "the": true, "your": true, "now": true,
	"i": true, "can": true, "get": true, "want": true, "need": true, "me": true,
	"just": true, "to": true, "talk": true, "speak": true, "with": true,
}

// IsTransferRequest reports whether the caller asked for a person. A word like
// "manager" inside an ordinary sentence is not a request, and any negation
// ("no I don't need the manager") cancels one.
func IsTransferRequest(text string) bool {
	lower := strings.ToLower(NormalizeString(text))
	tokens := tokenize(lower)
	if len(tokens) == 0 {
		return false
	}
	if hasToken(tokens, negativeWords...) || hasToken(tokens, noWords...) || hasToken(tokens, "dont", "never") {
		return false
	}
	if containsAny(strings.Join(tokens, " "), transferPhrases...) {
		return true
	}
	var rest []string
	for _, tok := range tokens {
		if !transferFillers[tok] {
			rest = append(rest, tok)
		}
	}
	return len(rest) == 1 && hasToken(rest, transferWords...)
}

var nameLeadIns = []string{
	"my name is", "name is", "this is", "i am", "i'm", "it's", "its", "call me", "you can call me",
}

var nameStopWords = map[string]bool{
	"hi": true, "hello": true, "hey": true, "yes": true, "um": true, "uh": true,
	"the": true, "and": true, "sir": true, "ma'am": true, "mr": true, "mrs": true, "ms": true,
}

// ExtractName pulls a personal name out of an utterance such as "my name is
// john smith" and returns it title-cased with at most three words.
func ExtractName(text string) (string, bool) {
	lower := " " + strings.ToLower(NormalizeString(text)) + " "
	for _, lead := range nameLeadIns {
		if i := strings.Index(lower, " "+lead+" "); i >= 0 {
			lower = " " + lower[i+len(lead)+2:]
		}
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || r == '\'' || r == '-' {
			return r
		}
		return ' '
	}, lower)

	var parts []string
	for _, w := range strings.Fields(cleaned) {
		w = strings.Trim(w, "'-")
		if w == "" || nameStopWords[w] {
			continue
		}
		parts = append(parts, titleWord(w))
		if len(parts) == 3 {
			break
		}
	}
	name := strings.Join(parts, " ")
	if len([]rune(name)) < 2 {
		return "", false
	}
	return name, true
}

// titleWord capitalizes each hyphen or apostrophe separated part: o'brien → O'Brien.
func titleWord(w string) string {
	runes := []rune(w)
	upperNext := true
	for i, r := range runes {
		if upperNext {
			runes[i] = unicode.ToUpper(r)
		}
		upperNext = r == '-' || r == '\''
	}
	return string(runes)
}
