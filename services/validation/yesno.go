package validation

import "strings"

// Answer is the outcome of a yes/no question.
type Answer int

const (
	AnswerUnknown Answer = iota
	AnswerYes
	AnswerNo
)

func (a Answer) String() string {
	switch a {
	case AnswerYes:
		return "yes"
	case AnswerNo:
		return "no"
	}
	return "unknown"
}

var (
	yesWords      = []string{"yes", "yeah", "yep", "yup", "ya", "yea", "sure", "okay", "ok", "correct", "right", "affirmative", "absolutely", "definitely", "perfect"}
	noWords       = []string{"no", "nope", "nah", "negative"}
	negativeWords = []string{"not", "incorrect", "wrong", "don't", "isn't", "wasn't"}
)

// ParseYesNo classifies an answer. Negations win over affirmative words so
// "that's not right" is a no.
func ParseYesNo(text string) Answer {
	lower := strings.ToLower(text)
	if containsAny(lower, "not sure", "don't know", "dont know", "no idea") {
		return AnswerUnknown
	}
	tokens := tokenize(lower)
	if len(tokens) == 1 && (tokens[0] == "1" || tokens[0] == "2") {
		// keypad: 1 yes, 2 no
		if tokens[0] == "1" {
			return AnswerYes
		}
		return AnswerNo
	}
	if hasToken(tokens, negativeWords...) {
		return AnswerNo
	}
	if hasToken(tokens, yesWords...) {
		return AnswerYes
	}
	if hasToken(tokens, noWords...) {
		return AnswerNo
	}
	return AnswerUnknown
}
