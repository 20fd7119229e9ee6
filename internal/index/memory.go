package index

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory VectorIndex. It serves as the offline
// default and as the index double in tests. Queries are an exact scan;
// fine for the corpus sizes a single-user assistant sees.
type MemoryIndex struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewMemoryIndex creates an empty in-memory vector index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{vectors: make(map[string][]float32)}
}

// Upsert stores a copy of the vector keyed by id.
func (m *MemoryIndex) Upsert(_ context.Context, id string, vector []float32) error {
	v := make([]float32, len(vector))
	copy(v, vector)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[id] = v
	return nil
}

// Delete removes the vector for id. Missing ids are a no-op.
func (m *MemoryIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vectors, id)
	return nil
}

// Query scans all vectors and returns the k nearest by cosine distance.
func (m *MemoryIndex) Query(_ context.Context, vector []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	matches := make([]Match, 0, len(m.vectors))
	for id, v := range m.vectors {
		matches = append(matches, Match{ID: id, Distance: cosineDistance(vector, v)})
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Len returns the number of stored vectors.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

// Close is a no-op for the in-memory index.
func (m *MemoryIndex) Close() error { return nil }

// cosineDistance returns 1 - cosine similarity. Mismatched or zero-norm
// vectors get the maximum distance of 1.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

var _ VectorIndex = (*MemoryIndex)(nil)
