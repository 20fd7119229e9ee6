package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/mitanshu-2004/memory-assistant/internal/storage"
	"github.com/mitanshu-2004/memory-assistant/pkg/types"
)

// PreviewGenerator renders a preview image for an item and returns the
// path it was written to. Implementations are external collaborators
// (thumbnailers, headless browsers); the engine only schedules them.
type PreviewGenerator interface {
	GeneratePreview(ctx context.Context, item *types.MemoryItem) (string, error)
}

// PreviewPool runs preview generation on a bounded worker pool so a slow
// renderer can't stall ingestion. Everything here is best-effort: a full
// pool drops the job, a failed render leaves the item without a preview,
// and both only log.
type PreviewPool struct {
	pool    *ants.Pool
	gen     PreviewGenerator
	store   storage.Store
	timeout time.Duration
}

// NewPreviewPool creates a preview pool with the given number of workers.
func NewPreviewPool(workers int, gen PreviewGenerator, store storage.Store) (*PreviewPool, error) {
	if workers <= 0 {
		workers = 2
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("engine: failed to create preview pool: %w", err)
	}
	return &PreviewPool{
		pool:    pool,
		gen:     gen,
		store:   store,
		timeout: 60 * time.Second,
	}, nil
}

// Submit schedules preview generation for the item. Returns immediately;
// the render happens on a pool worker.
func (p *PreviewPool) Submit(itemID string) {
	err := p.pool.Submit(func() {
		p.generate(itemID)
	})
	if err != nil {
		log.Printf("engine: preview job for item %s dropped: %v", itemID, err)
	}
}

func (p *PreviewPool) generate(itemID string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	item, err := p.store.GetItem(ctx, itemID)
	if err != nil {
		// The item may have been deleted before the worker ran.
		log.Printf("engine: preview skipped for item %s: %v", itemID, err)
		return
	}

	path, err := p.gen.GeneratePreview(ctx, item)
	if err != nil {
		log.Printf("engine: preview generation failed for item %s: %v", itemID, err)
		return
	}
	if path == "" {
		return
	}

	item.PreviewImagePath = path
	if err := p.store.UpdateItem(ctx, item); err != nil {
		log.Printf("engine: failed to record preview path for item %s: %v", itemID, err)
	}
}

// Close releases the worker pool. Pending jobs are abandoned.
func (p *PreviewPool) Close() {
	p.pool.Release()
}
