package index

import (
	"context"
	"testing"
)

func TestMemoryIndexQueryOrdering(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	// Unit vectors at decreasing similarity to the query (1, 0).
	idx.Upsert(ctx, "exact", []float32{1, 0})
	idx.Upsert(ctx, "close", []float32{1, 0.2})
	idx.Upsert(ctx, "orthogonal", []float32{0, 1})

	matches, err := idx.Query(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}

	wantOrder := []string{"exact", "close", "orthogonal"}
	for i, want := range wantOrder {
		if matches[i].ID != want {
			t.Errorf("matches[%d] = %s, want %s", i, matches[i].ID, want)
		}
	}
	if matches[0].Distance > 1e-6 {
		t.Errorf("exact match distance = %f, want ~0", matches[0].Distance)
	}
}

func TestMemoryIndexTopK(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	idx.Upsert(ctx, "a", []float32{1, 0})
	idx.Upsert(ctx, "b", []float32{0, 1})
	idx.Upsert(ctx, "c", []float32{1, 1})

	matches, err := idx.Query(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want 2", len(matches))
	}
}

func TestMemoryIndexUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	idx.Upsert(ctx, "item", []float32{0, 1})
	idx.Upsert(ctx, "item", []float32{1, 0})

	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want 1", idx.Len())
	}

	matches, err := idx.Query(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Distance > 1e-6 {
		t.Errorf("replaced vector not in effect: %+v", matches)
	}
}

func TestMemoryIndexDeleteMissingIsNoop(t *testing.T) {
	idx := NewMemoryIndex()
	if err := idx.Delete(context.Background(), "never-stored"); err != nil {
		t.Errorf("Delete of a missing id returned error: %v", err)
	}
}

func TestMemoryIndexDeleteRemoves(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	idx.Upsert(ctx, "item", []float32{1, 0})

	if err := idx.Delete(ctx, "item"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	matches, err := idx.Query(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("deleted vector still returned: %+v", matches)
	}
}

func TestCosineDistanceDegenerateInputs(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
	}{
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}},
		{"zero norm", []float32{0, 0}, []float32{1, 0}},
		{"empty", nil, nil},
	}
	for _, tc := range cases {
		if d := cosineDistance(tc.a, tc.b); d != 1 {
			t.Errorf("%s: distance = %f, want 1", tc.name, d)
		}
	}
}
