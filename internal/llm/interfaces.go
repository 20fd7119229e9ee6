// Package llm provides clients for the generative and embedding
// capabilities. Both are treated as best-effort: every call goes through a
// circuit breaker and a rate limiter, and callers fall back to heuristics
// when a call fails.
package llm

import "context"

// CompleteOptions bounds a single text generation call.
type CompleteOptions struct {
	// MaxTokens caps the generated output length.
	MaxTokens int

	// Temperature controls sampling randomness (0 = deterministic-ish).
	Temperature float64

	// Stop lists sequences that terminate generation.
	Stop []string
}

// TextGenerator is the interface for LLM text completion.
// All metadata prompts use single-string completion style (not chat).
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
	Model() string
}

// EmbeddingGenerator generates vector embeddings of fixed dimensionality,
// deterministic for identical input.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}
