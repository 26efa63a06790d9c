package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var moveTypes = []string{"local", "long distance", "junk removal", "in-home service"}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"'in-home service'":          "in-home service",
		`"Long Distance."`:           "long distance",
		"LOCAL":                      "local",
		"long_distance":              "long distance",
		"The answer is junk removal": "junk removal",
		"local or long distance":     Unrecognized,
		"piano moving":               Unrecognized,
		"":                           Unrecognized,
		"unrecognized":               Unrecognized,
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in, moveTypes), "input %q", in)
	}
}

func TestKeywordClassifier(t *testing.T) {
	k := NewKeywordClassifier(nil)
	ctx := context.Background()

	got, err := k.Classify(ctx, "we're moving out of state", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, "long distance", got)

	got, err = k.Classify(ctx, "just some junk in the garage", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, "junk removal", got)

	got, err = k.Classify(ctx, "local junk", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, Unrecognized, got)

	_, err = k.Classify(ctx, "local", nil)
	assert.ErrorIs(t, err, ErrNoCategories)
}

type fakeGenerator struct {
	out   string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.out, f.err
}

func TestGeminiClassifier_NormalizesAnswer(t *testing.T) {
	g := NewGeminiClassifier(&fakeGenerator{out: "  \"Junk Removal\"\n"})
	got, err := g.Classify(context.Background(), "get rid of old stuff", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, "junk removal", got)

	g = NewGeminiClassifier(&fakeGenerator{out: "I think you want a piano mover"})
	got, err = g.Classify(context.Background(), "piano", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, Unrecognized, got)
}

func TestOpenAIClassifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "'In-Home Service'"}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	o := NewOpenAIClassifier("test-key", "gpt-4", srv.URL+"/v1")
	got, err := o.Classify(context.Background(), "rearrange my living room", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, "in-home service", got)
}

func TestOpenAIClassifier_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
	}))
	defer srv.Close()

	o := NewOpenAIClassifier("test-key", "gpt-4", srv.URL+"/v1")
	_, err := o.Classify(context.Background(), "anything", moveTypes)
	assert.Error(t, err)
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string, []string) (string, error) {
	return "", errors.New("backend down")
}

type rawClassifier struct{ out string }

func (r rawClassifier) Classify(context.Context, string, []string) (string, error) {
	return r.out, nil
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	chain := NewChain(zaptest.NewLogger(t)).
		Add("keyword", NewKeywordClassifier(nil)).
		Add("broken", failingClassifier{}).
		Add("llm", rawClassifier{out: "Local."})

	got, err := chain.Classify(ctx, "long distance please", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, "long distance", got)

	// keyword misses, broken backend is skipped, raw answer is normalized
	got, err = chain.Classify(ctx, "just down the street", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, "local", got)

	empty := NewChain(zaptest.NewLogger(t)).Add("llm", rawClassifier{out: "spaceship"})
	got, err = empty.Classify(ctx, "to the moon", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, Unrecognized, got)
}

func TestCachedClassifier(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	gen := &fakeGenerator{out: "long distance"}
	c := NewCachedClassifier(NewGeminiClassifier(gen), client, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.Classify(ctx, "Moving to Denver", moveTypes)
		require.NoError(t, err)
		assert.Equal(t, "long distance", got)
	}
	assert.Equal(t, 1, gen.calls)

	gen.out = "no idea"
	got, err := c.Classify(ctx, "hmm", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, Unrecognized, got)
	_, err = c.Classify(ctx, "hmm", moveTypes)
	require.NoError(t, err)
	assert.Equal(t, 3, gen.calls)
}
