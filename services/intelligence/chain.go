package ai

import (
	"context"
	"time"

	"moveline/config"
	"moveline/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Chain asks each classifier in order and returns the first recognized
// category. Backend errors are logged and the next classifier is tried.
type Chain struct {
	classifiers []Classifier
	names       []string
	logger      *zap.Logger
}

func NewChain(logger *zap.Logger) *Chain {
	return &Chain{logger: logger}
}

// Add appends a named classifier.
func (c *Chain) Add(name string, cl Classifier) *Chain {
	c.classifiers = append(c.classifiers, cl)
	c.names = append(c.names, name)
	return c
}

func (c *Chain) Classify(ctx context.Context, text string, categories []string) (string, error) {
	if len(categories) == 0 {
		return "", ErrNoCategories
	}
	for i, cl := range c.classifiers {
		out, err := cl.Classify(ctx, text, categories)
		if err != nil {
			utils.CollaboratorErrors.WithLabelValues("classifier_" + c.names[i]).Inc()
			c.logger.Warn("classifier failed", zap.String("classifier", c.names[i]), zap.Error(err))
			continue
		}
		// Normalize again: a backend may not honour the contract.
		if out = Normalize(out, categories); out != Unrecognized {
			return out, nil
		}
	}
	return Unrecognized, nil
}

// NewFromConfig builds the keyword classifier followed by the LLM backend
// selected by INTENT_PROVIDER ("keyword", "openai" or "gemini"). cache may
// be nil.
func NewFromConfig(ctx context.Context, cfg config.Config, cache *redis.Client, logger *zap.Logger) *Chain {
	chain := NewChain(logger).Add("keyword", NewKeywordClassifier(nil))

	var backend Classifier
	switch cfg.IntentProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("INTENT_PROVIDER=openai but OPENAI_API_KEY is empty; using keywords only")
			break
		}
		backend = NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIModel, "")
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Warn("INTENT_PROVIDER=gemini but GEMINI_API_KEY is empty; using keywords only")
			break
		}
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("gemini client unavailable", zap.Error(err))
			break
		}
		backend = NewGeminiClassifier(client)
	}
	if backend == nil {
		return chain
	}
	if cache != nil {
		backend = NewCachedClassifier(backend, cache, 24*time.Hour)
	}
	return chain.Add(cfg.IntentProvider, backend)
}
