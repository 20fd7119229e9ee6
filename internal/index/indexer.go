package index

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitanshu-2004/memory-assistant/internal/llm"
)

// maxEmbedChars is the conservative character cap applied before
// embedding. Over-long input is truncated rather than rejected; the
// underlying model limit is ~512 tokens.
const maxEmbedChars = 2048

var embedWhitespaceRe = regexp.MustCompile(`\s+`)

// Indexer ties an embedding generator to a vector index, keyed by memory
// item identity. All operations are safe to call with the same id
// repeatedly: upserts replace, deletes of missing ids are no-ops.
type Indexer struct {
	embedder llm.EmbeddingGenerator
	index    VectorIndex
}

// NewIndexer creates an embedding indexer.
func NewIndexer(embedder llm.EmbeddingGenerator, index VectorIndex) *Indexer {
	return &Indexer{embedder: embedder, index: index}
}

// Upsert embeds the text and writes the vector keyed by itemID, replacing
// any prior vector for that id.
func (x *Indexer) Upsert(ctx context.Context, itemID, text string) error {
	if itemID == "" {
		return fmt.Errorf("index: item ID is required")
	}

	vector, err := x.embedder.Embed(ctx, normalizeForEmbedding(text))
	if err != nil {
		return fmt.Errorf("index: failed to embed item %s: %w", itemID, err)
	}

	if err := x.index.Upsert(ctx, itemID, vector); err != nil {
		return fmt.Errorf("index: failed to upsert vector for item %s: %w", itemID, err)
	}
	return nil
}

// Delete removes the vector for itemID. Missing ids are a no-op.
func (x *Indexer) Delete(ctx context.Context, itemID string) error {
	if err := x.index.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("index: failed to delete vector for item %s: %w", itemID, err)
	}
	return nil
}

// SearchByText embeds the query and returns up to topK (id, score) pairs.
// Distance converts to a similarity score of 1 - distance with a floor of
// 0, so scores stay within [0,1]. No ordering guarantee exists beyond
// similarity rank; ties are unordered.
func (x *Indexer) SearchByText(ctx context.Context, query string, topK int) ([]Hit, error) {
	vector, err := x.embedder.Embed(ctx, normalizeForEmbedding(query))
	if err != nil {
		return nil, fmt.Errorf("index: failed to embed query: %w", err)
	}

	matches, err := x.index.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("index: vector query failed: %w", err)
	}

	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		score := 1 - m.Distance
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		hits = append(hits, Hit{ID: m.ID, Score: score})
	}
	return hits, nil
}

// normalizeForEmbedding collapses whitespace and truncates to the
// character cap, favoring truncation over failure on over-long input.
func normalizeForEmbedding(text string) string {
	cleaned := embedWhitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	runes := []rune(cleaned)
	if len(runes) > maxEmbedChars {
		return string(runes[:maxEmbedChars])
	}
	return cleaned
}
