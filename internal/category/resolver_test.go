package category

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitanshu-2004/memory-assistant/internal/llm"
	"github.com/mitanshu-2004/memory-assistant/internal/storage"
	"github.com/mitanshu-2004/memory-assistant/pkg/types"
)

// fakeCategoryStore is an in-memory category.Store.
type fakeCategoryStore struct {
	categories []types.Category
	nextID     int64
	createErr  error
	created    []string
}

func newFakeCategoryStore(names ...string) *fakeCategoryStore {
	s := &fakeCategoryStore{nextID: 1}
	for _, name := range names {
		s.categories = append(s.categories, types.Category{ID: s.nextID, Name: name})
		s.nextID++
	}
	return s
}

func (s *fakeCategoryStore) ListCategories(context.Context) ([]types.Category, error) {
	out := make([]types.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *fakeCategoryStore) CreateCategory(_ context.Context, name string) (*types.Category, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	cat := types.Category{ID: s.nextID, Name: name}
	s.nextID++
	s.categories = append(s.categories, cat)
	s.created = append(s.created, name)
	return &cat, nil
}

// pickGen always answers with a fixed completion.
type pickGen struct{ answer string }

func (g *pickGen) Complete(context.Context, string, llm.CompleteOptions) (string, error) {
	return g.answer, nil
}
func (g *pickGen) Model() string { return "pick" }

func TestResolveEmptyInput(t *testing.T) {
	r := NewResolver(newFakeCategoryStore(), nil)
	cat, err := r.Resolve(context.Background(), "   ", "")
	require.NoError(t, err)
	assert.Nil(t, cat)
}

func TestResolveHintMatchesExistingBySubstring(t *testing.T) {
	store := newFakeCategoryStore("Work Projects", "Travel")
	r := NewResolver(store, nil)

	cat, err := r.Resolve(context.Background(), "anything", "work")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "Work Projects", cat.Name)
	assert.Empty(t, store.created, "no new category should be created")
}

func TestResolveHintCreatesWhenMissing(t *testing.T) {
	store := newFakeCategoryStore("Travel")
	r := NewResolver(store, nil)

	cat, err := r.Resolve(context.Background(), "anything", "Gardening")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "Gardening", cat.Name)
	assert.Equal(t, []string{"Gardening"}, store.created)
}

func TestResolveModelPicksExistingName(t *testing.T) {
	store := newFakeCategoryStore("Work", "Travel")
	r := NewResolver(store, &pickGen{answer: "Travel"})

	cat, err := r.Resolve(context.Background(), "booked a flight and a hotel for the trip", "")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "Travel", cat.Name)
}

func TestResolveDiscardsInventedModelName(t *testing.T) {
	// The model answers a name that is not in the existing set; the lexical
	// fallback still matches "travel" as a literal substring of the text.
	store := newFakeCategoryStore("Work", "Travel")
	r := NewResolver(store, &pickGen{answer: "Adventure Planning Stuff Galore"})

	cat, err := r.Resolve(context.Background(), "notes about travel insurance", "")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "Travel", cat.Name)
}

func TestResolveLexicalOverlap(t *testing.T) {
	store := newFakeCategoryStore("Machine Learning", "Cooking")
	r := NewResolver(store, nil)

	cat, err := r.Resolve(context.Background(), "gradient descent makes machine learning work", "")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "Machine Learning", cat.Name)
}

func TestResolveSynthesizesFromLexicon(t *testing.T) {
	store := newFakeCategoryStore()
	r := NewResolver(store, nil)

	cat, err := r.Resolve(context.Background(), "meeting with the client about the project deadline", "")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "Work", cat.Name)
	assert.Equal(t, []string{"Work"}, store.created)
}

func TestResolveSynthesizesFromFrequentWord(t *testing.T) {
	store := newFakeCategoryStore()
	r := NewResolver(store, nil)

	cat, err := r.Resolve(context.Background(), "gardening gardening gardening tips", "")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "Gardening", cat.Name)
}

func TestResolveCreationConflictPropagates(t *testing.T) {
	store := newFakeCategoryStore()
	store.createErr = fmt.Errorf("%w: category exists", storage.ErrConflict)
	r := NewResolver(store, nil)

	_, err := r.Resolve(context.Background(), "meeting with the client about the project deadline", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrConflict))
}
