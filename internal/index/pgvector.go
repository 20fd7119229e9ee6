package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // Postgres driver
	pgvector "github.com/pgvector/pgvector-go"
)

// PgVectorIndex is a VectorIndex backed by a Postgres table with a
// pgvector column. It is the persistent production backend; cosine
// distance queries use the <=> operator.
type PgVectorIndex struct {
	db        *sql.DB
	dimension int
}

// OpenPgVectorIndex connects to Postgres, ensures the pgvector extension
// and the embeddings table exist, and returns the index. dimension fixes
// the vector column width and must match the embedding model.
func OpenPgVectorIndex(dsn string, dimension int) (*PgVectorIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("pgvector: dimension must be positive, got %d", dimension)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("pgvector: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pgvector: failed to connect: %w", err)
	}

	if _, err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pgvector: failed to create extension: %w", err)
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS memory_embeddings (
			memory_id  TEXT PRIMARY KEY,
			embedding  vector(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`, dimension)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("pgvector: failed to create embeddings table: %w", err)
	}

	return &PgVectorIndex{db: db, dimension: dimension}, nil
}

// Upsert writes the vector for memory_id, replacing any prior row.
func (p *PgVectorIndex) Upsert(ctx context.Context, id string, vector []float32) error {
	if id == "" {
		return fmt.Errorf("pgvector: id is required")
	}
	if len(vector) != p.dimension {
		return fmt.Errorf("pgvector: vector length %d does not match dimension %d", len(vector), p.dimension)
	}

	query := `
		INSERT INTO memory_embeddings (memory_id, embedding, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (memory_id) DO UPDATE SET
			embedding = excluded.embedding,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := p.db.ExecContext(ctx, query, id, pgvector.NewVector(vector)); err != nil {
		return fmt.Errorf("pgvector: failed to upsert embedding: %w", err)
	}
	return nil
}

// Delete removes the vector for id. Missing rows are a no-op.
func (p *PgVectorIndex) Delete(ctx context.Context, id string) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM memory_embeddings WHERE memory_id = $1", id); err != nil {
		return fmt.Errorf("pgvector: failed to delete embedding: %w", err)
	}
	return nil
}

// Query returns the k nearest rows by cosine distance.
func (p *PgVectorIndex) Query(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}

	query := `
		SELECT memory_id, embedding <=> $1 AS distance
		FROM memory_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	rows, err := p.db.QueryContext(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("pgvector: query failed: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Distance); err != nil {
			return nil, fmt.Errorf("pgvector: failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: row iteration failed: %w", err)
	}

	return matches, nil
}

// Close closes the database connection.
func (p *PgVectorIndex) Close() error {
	return p.db.Close()
}

var _ VectorIndex = (*PgVectorIndex)(nil)
