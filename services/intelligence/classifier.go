// File: services/intelligence/classifier.go
package ai

import (
	"context"
	"errors"
	"strings"

	"moveline/services/validation"
)

// Unrecognized is the category returned when no allowed category matched.
const Unrecognized = "unrecognized"

var ErrNoCategories = errors.New("no categories to classify against")

// Classifier maps free text onto one of a fixed set of categories. The
// result is always one of categories or Unrecognized.
type Classifier interface {
	Classify(ctx context.Context, text string, categories []string) (string, error)
}

// Normalize is the boundary every classifier answer passes through before it
// reaches session data. Quotes, case, trailing punctuation and filler are
// stripped; the answer must then equal one category or mention exactly one.
func Normalize(raw string, categories []string) string {
	answer := canonical(raw)
	if answer == "" {
		return Unrecognized
	}
	var mentioned []string
	for _, c := range categories {
		cc := canonical(c)
		if answer == cc {
			return c
		}
		if strings.Contains(answer, cc) {
			mentioned = append(mentioned, c)
		}
	}
	if len(mentioned) == 1 {
		return mentioned[0]
	}
	return Unrecognized
}

func canonical(s string) string {
	s = strings.ToLower(validation.NormalizeString(s))
	s = strings.TrimRight(s, ".!?,;: ")
	s = strings.TrimPrefix(s, "category:")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(validation.NormalizeString(s)), " ")
}

// prompt builds the instruction sent to LLM backends.
func prompt(text string, categories []string) string {
	var b strings.Builder
	b.WriteString("You classify what a caller said to a moving company phone line.\n")
	b.WriteString("Answer with exactly one of these categories and nothing else: ")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString(", " + Unrecognized + ".\n")
	b.WriteString("Caller said: ")
	b.WriteString(text)
	return b.String()
}
