// Package engine orchestrates ingestion, retrieval, and hybrid search over
// the storage, metadata, category, and index layers.
//
// The orchestrator distinguishes hard failures from enrichment failures:
// extraction, dedup, and the item write must succeed, while metadata
// refinement, category resolution, embedding indexing, and preview
// generation degrade with a log line and never fail the operation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mitanshu-2004/memory-assistant/internal/category"
	"github.com/mitanshu-2004/memory-assistant/internal/extract"
	"github.com/mitanshu-2004/memory-assistant/internal/fingerprint"
	"github.com/mitanshu-2004/memory-assistant/internal/index"
	"github.com/mitanshu-2004/memory-assistant/internal/metadata"
	"github.com/mitanshu-2004/memory-assistant/internal/storage"
	"github.com/mitanshu-2004/memory-assistant/pkg/types"
)

// Engine wires the pipeline stages together. indexer, resolver, and
// previews are optional; a nil value disables that stage.
type Engine struct {
	store     storage.Store
	extractor extract.TextExtractor
	meta      *metadata.Generator
	resolver  *category.Resolver
	indexer   *index.Indexer
	previews  *PreviewPool
}

// New creates an engine. meta must be non-nil (it degrades internally when
// no model is configured); indexer, resolver, and previews may be nil.
func New(store storage.Store, extractor extract.TextExtractor, meta *metadata.Generator, resolver *category.Resolver, indexer *index.Indexer, previews *PreviewPool) *Engine {
	if extractor == nil {
		extractor = extract.NewPlain()
	}
	return &Engine{
		store:     store,
		extractor: extractor,
		meta:      meta,
		resolver:  resolver,
		indexer:   indexer,
		previews:  previews,
	}
}

// IngestRequest describes one piece of content to remember. Content is
// used directly when set; otherwise Data is run through the extractor.
// Explicit Title or Tags suppress the corresponding generated values.
// CategoryID links an existing category and suppresses auto-resolution;
// AutoCategory enables resolution when no CategoryID is given.
type IngestRequest struct {
	Content       string
	Data          []byte
	SourceType    types.SourceType
	SourceLocator string
	MimeType      string
	FilePath      string

	Title        string
	Tags         []string
	CategoryID   int64
	AutoCategory bool
}

// Ingest runs the full add pipeline and returns the stored item.
// Duplicate content returns storage.ErrConflict.
func (e *Engine) Ingest(ctx context.Context, req IngestRequest) (*types.MemoryItem, error) {
	text := req.Content
	if text == "" {
		sourceType := req.SourceType
		if sourceType == "" {
			sourceType = types.SourceText
		}
		extracted, err := e.extractor.Extract(sourceType, req.Data, req.MimeType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		text = extracted
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: content is empty", storage.ErrInvalidInput)
	}

	hash := fingerprint.Content(text)
	exists, err := e.store.ContentHashExists(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("engine: dedup check failed: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: identical content already stored", storage.ErrConflict)
	}

	meta := e.meta.Generate(ctx, text)
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = meta.Title
	}
	tags := req.Tags
	if len(tags) == 0 {
		tags = meta.Tags
	}

	now := time.Now()
	item := &types.MemoryItem{
		ID:            uuid.NewString(),
		Title:         title,
		Content:       text,
		Summary:       e.meta.Summarize(ctx, text),
		ContentHash:   hash,
		SourceType:    req.SourceType,
		SourceLocator: req.SourceLocator,
		MimeType:      req.MimeType,
		FilePath:      req.FilePath,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if item.SourceType == "" {
		item.SourceType = types.SourceText
	}

	// The existence check above only narrows the race window; the UNIQUE
	// constraint is the authority and a concurrent duplicate loses here.
	if err := e.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	if err := e.applyTags(ctx, item, tags); err != nil {
		log.Printf("engine: tag assignment failed for item %s: %v", item.ID, err)
	}

	e.assignCategory(ctx, item, text, req.CategoryID, req.AutoCategory)

	if e.indexer != nil {
		if err := e.indexer.Upsert(ctx, item.ID, text); err != nil {
			log.Printf("engine: embedding indexing failed for item %s: %v", item.ID, err)
		}
	}

	if e.previews != nil {
		e.previews.Submit(item.ID)
	}

	return item, nil
}

// UpdateRequest carries partial updates; nil fields are left untouched.
// A CategoryID of 0 clears the category link.
type UpdateRequest struct {
	Title      *string
	Content    *string
	Summary    *string
	IsFavorite *bool
	IsArchived *bool
	Tags       []string
	CategoryID *int64
}

// Update applies the request to an existing item. The content hash is
// recomputed and the embedding refreshed only when the content changed.
func (e *Engine) Update(ctx context.Context, id string, req UpdateRequest) (*types.MemoryItem, error) {
	item, err := e.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	contentChanged := false
	if req.Content != nil && *req.Content != item.Content {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, fmt.Errorf("%w: content is empty", storage.ErrInvalidInput)
		}
		item.Content = *req.Content
		item.ContentHash = fingerprint.Content(item.Content)
		contentChanged = true
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Summary != nil {
		item.Summary = *req.Summary
	}
	if req.IsFavorite != nil {
		item.IsFavorite = *req.IsFavorite
	}
	if req.IsArchived != nil {
		item.IsArchived = *req.IsArchived
	}

	if err := e.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	if req.Tags != nil {
		if err := e.applyTags(ctx, item, req.Tags); err != nil {
			log.Printf("engine: tag assignment failed for item %s: %v", item.ID, err)
		}
	}
	if req.CategoryID != nil {
		if err := e.store.SetItemCategory(ctx, item.ID, *req.CategoryID); err != nil {
			return nil, fmt.Errorf("engine: failed to set category: %w", err)
		}
	}

	if contentChanged && e.indexer != nil {
		if err := e.indexer.Upsert(ctx, item.ID, item.Content); err != nil {
			log.Printf("engine: embedding refresh failed for item %s: %v", item.ID, err)
		}
	}

	return e.store.GetItem(ctx, item.ID)
}

// Delete removes the item, its stored artifacts, and its embedding. The
// embedding and artifact removals run on every path, including when they
// were never created; both tolerate absence.
func (e *Engine) Delete(ctx context.Context, id string) error {
	item, err := e.store.GetItem(ctx, id)
	if err != nil {
		return err
	}

	if err := e.store.DeleteItem(ctx, id); err != nil {
		return err
	}

	for _, path := range []string{item.FilePath, item.PreviewImagePath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("engine: failed to remove artifact %s: %v", path, err)
		}
	}

	if e.indexer != nil {
		if err := e.indexer.Delete(ctx, id); err != nil {
			log.Printf("engine: failed to remove embedding for item %s: %v", id, err)
		}
	}

	return nil
}

// Get retrieves an item and records the access.
func (e *Engine) Get(ctx context.Context, id string) (*types.MemoryItem, error) {
	item, err := e.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.store.TouchAccess(ctx, id); err != nil {
		log.Printf("engine: failed to record access for item %s: %v", id, err)
	}
	return item, nil
}

// List retrieves items newest-first with optional filters.
func (e *Engine) List(ctx context.Context, opts storage.ListOptions) ([]types.MemoryItem, error) {
	return e.store.ListItems(ctx, opts)
}

// Summarize regenerates and persists the item's summary.
func (e *Engine) Summarize(ctx context.Context, id string) (string, error) {
	item, err := e.store.GetItem(ctx, id)
	if err != nil {
		return "", err
	}

	summary := e.meta.Summarize(ctx, item.Content)
	item.Summary = summary
	if err := e.store.UpdateItem(ctx, item); err != nil {
		return "", fmt.Errorf("engine: failed to persist summary: %w", err)
	}
	return summary, nil
}

// Categories returns all categories with their item counts.
func (e *Engine) Categories(ctx context.Context) ([]types.Category, error) {
	return e.store.ListCategories(ctx)
}

// CreateCategory creates a category by name.
func (e *Engine) CreateCategory(ctx context.Context, name string) (*types.Category, error) {
	return e.store.CreateCategory(ctx, name)
}

// RenameCategory renames a category.
func (e *Engine) RenameCategory(ctx context.Context, id int64, name string) error {
	return e.store.RenameCategory(ctx, id, name)
}

// DeleteCategory removes a category; linked items lose the link only.
func (e *Engine) DeleteCategory(ctx context.Context, id int64) error {
	return e.store.DeleteCategory(ctx, id)
}

// applyTags replaces the item's tags with the canonicalized set and keeps
// the in-memory item in sync.
func (e *Engine) applyTags(ctx context.Context, item *types.MemoryItem, names []string) error {
	tags, err := e.store.GetOrCreateTags(ctx, names)
	if err != nil {
		return err
	}

	ids := make([]int64, len(tags))
	for i, tag := range tags {
		ids[i] = tag.ID
	}
	if err := e.store.ReplaceItemTags(ctx, item.ID, ids); err != nil {
		return err
	}

	item.Tags = tags
	return nil
}

// assignCategory links the item to a category. An explicit categoryID wins
// and suppresses resolution; otherwise autoCategory gates the resolver.
// Resolution is enrichment: failures, including a lost creation race, are
// logged and the item stays uncategorized.
func (e *Engine) assignCategory(ctx context.Context, item *types.MemoryItem, text string, categoryID int64, autoCategory bool) {
	if categoryID != 0 {
		if _, err := e.store.GetCategory(ctx, categoryID); err != nil {
			log.Printf("engine: category %d not found for item %s: %v", categoryID, item.ID, err)
			return
		}
		if err := e.store.SetItemCategory(ctx, item.ID, categoryID); err != nil {
			log.Printf("engine: failed to set category for item %s: %v", item.ID, err)
			return
		}
		return
	}

	if !autoCategory || e.resolver == nil {
		return
	}

	cat, err := e.resolver.Resolve(ctx, text, "")
	if err != nil {
		log.Printf("engine: category resolution failed for item %s: %v", item.ID, err)
		return
	}
	if cat == nil {
		return
	}
	if err := e.store.SetItemCategory(ctx, item.ID, cat.ID); err != nil {
		log.Printf("engine: failed to set category for item %s: %v", item.ID, err)
		return
	}
	item.Category = cat
}
