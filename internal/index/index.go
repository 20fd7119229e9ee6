// Package index wraps embedding generation and the persistent vector
// index. The index itself is a narrow capability (upsert/query/delete by
// id) with two backends: an in-memory cosine index and a Postgres/pgvector
// table.
package index

import "context"

// Match is one nearest-neighbor result from a vector index query.
type Match struct {
	// ID is the memory item id the vector is keyed by.
	ID string

	// Distance is the cosine distance to the query vector (0 = identical).
	Distance float64
}

// VectorIndex is the persistent vector index capability.
type VectorIndex interface {
	// Upsert writes a vector keyed by id, replacing any prior vector for
	// that id. Re-upserting the same id overwrites, never duplicates.
	Upsert(ctx context.Context, id string, vector []float32) error

	// Delete removes the vector for id. Deleting a non-existent id is a
	// no-op, not an error.
	Delete(ctx context.Context, id string) error

	// Query returns the k nearest vectors by cosine distance, closest
	// first. Ties are unordered.
	Query(ctx context.Context, vector []float32, k int) ([]Match, error)

	// Close releases any resources held by the index.
	Close() error
}

// Hit is a scored semantic search result.
type Hit struct {
	ID    string
	Score float64 // similarity in [0,1]
}
