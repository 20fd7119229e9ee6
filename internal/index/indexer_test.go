package index

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// keywordEmbedder embeds text as keyword-presence counts, giving
// deterministic similarity without a model.
type keywordEmbedder struct {
	vocab  []string
	err    error
	embeds int
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.embeds++
	v := make([]float32, len(e.vocab))
	for i, word := range e.vocab {
		v[i] = float32(strings.Count(strings.ToLower(text), word))
	}
	return v, nil
}

func (e *keywordEmbedder) Model() string { return "keyword-test" }

func newTestIndexer() (*Indexer, *keywordEmbedder, *MemoryIndex) {
	embedder := &keywordEmbedder{vocab: []string{"cats", "dogs", "fish"}}
	idx := NewMemoryIndex()
	return NewIndexer(embedder, idx), embedder, idx
}

func TestIndexerSearchByText(t *testing.T) {
	ctx := context.Background()
	indexer, _, _ := newTestIndexer()

	indexer.Upsert(ctx, "feline", "cats cats cats")
	indexer.Upsert(ctx, "canine", "dogs dogs dogs")

	hits, err := indexer.SearchByText(ctx, "all about cats", 10)
	if err != nil {
		t.Fatalf("SearchByText failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits")
	}
	if hits[0].ID != "feline" {
		t.Errorf("top hit = %s, want feline", hits[0].ID)
	}
	for _, hit := range hits {
		if hit.Score < 0 || hit.Score > 1 {
			t.Errorf("score %f for %s is outside [0,1]", hit.Score, hit.ID)
		}
	}
}

func TestIndexerUpsertThenDelete(t *testing.T) {
	ctx := context.Background()
	indexer, _, idx := newTestIndexer()

	if err := indexer.Upsert(ctx, "item", "cats and dogs"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := indexer.Delete(ctx, "item"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("index still holds %d vectors after delete", idx.Len())
	}

	hits, err := indexer.SearchByText(ctx, "cats", 10)
	if err != nil {
		t.Fatalf("SearchByText failed: %v", err)
	}
	for _, hit := range hits {
		if hit.ID == "item" {
			t.Error("deleted item still returned from search")
		}
	}
}

func TestIndexerEmbedErrorPropagates(t *testing.T) {
	embedder := &keywordEmbedder{vocab: []string{"x"}, err: errors.New("model down")}
	indexer := NewIndexer(embedder, NewMemoryIndex())

	if err := indexer.Upsert(context.Background(), "item", "text"); err == nil {
		t.Error("Upsert should fail when embedding fails")
	}
	if _, err := indexer.SearchByText(context.Background(), "query", 5); err == nil {
		t.Error("SearchByText should fail when embedding fails")
	}
}

func TestIndexerRequiresID(t *testing.T) {
	indexer, embedder, _ := newTestIndexer()
	if err := indexer.Upsert(context.Background(), "", "text"); err == nil {
		t.Error("Upsert with empty id should fail")
	}
	if embedder.embeds != 0 {
		t.Error("no embedding should be computed for an invalid upsert")
	}
}

func TestNormalizeForEmbedding(t *testing.T) {
	if got := normalizeForEmbedding("  a \n\t b  "); got != "a b" {
		t.Errorf("normalizeForEmbedding = %q, want %q", got, "a b")
	}

	long := strings.Repeat("x", 3*maxEmbedChars)
	if got := normalizeForEmbedding(long); len([]rune(got)) != maxEmbedChars {
		t.Errorf("normalized length = %d, want %d", len([]rune(got)), maxEmbedChars)
	}
}
