package ai

import (
	"context"
	"strings"

	"moveline/services/validation"
)

// KeywordClassifier matches categories and their synonyms as phrases in the
// text. It needs no network and is always consulted first.
type KeywordClassifier struct {
	synonyms map[string][]string
}

// DefaultSynonyms covers the categories the dialogue asks about.
var DefaultSynonyms = map[string][]string{
	"local":           {"local", "same city", "across town", "in town"},
	"long distance":   {"long distance", "long-distance", "out of state", "interstate", "cross country"},
	"junk removal":    {"junk", "haul away", "trash removal", "debris"},
	"in-home service": {"in-home", "in home", "rearrange", "move furniture inside"},
	"estimate":        {"estimate", "quote", "price", "how much", "cost"},
	"book":            {"book", "schedule", "reserve", "set up a move"},
	"transfer":        {"manager", "operator", "human", "representative", "real person", "someone"},
}

func NewKeywordClassifier(synonyms map[string][]string) *KeywordClassifier {
	if synonyms == nil {
		synonyms = DefaultSynonyms
	}
	return &KeywordClassifier{synonyms: synonyms}
}

func (k *KeywordClassifier) Classify(_ context.Context, text string, categories []string) (string, error) {
	if len(categories) == 0 {
		return "", ErrNoCategories
	}
	lower := strings.ToLower(validation.NormalizeString(text))
	if lower == "" {
		return Unrecognized, nil
	}

	var hits []string
	for _, c := range categories {
		phrases := append([]string{strings.ToLower(c)}, k.synonyms[c]...)
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				hits = append(hits, c)
				break
			}
		}
	}
	if len(hits) != 1 {
		return Unrecognized, nil
	}
	return hits[0], nil
}
