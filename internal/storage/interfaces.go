// Package storage provides composable storage interfaces for the memory
// assistant's relational layer.
//
// The interfaces are small and focused so that the ingestion pipeline and
// the search engine can be tested against fakes, and so that backends can
// be swapped without touching callers.
package storage

import (
	"context"

	"github.com/mitanshu-2004/memory-assistant/pkg/types"
)

// ItemStore provides CRUD operations for memory items.
type ItemStore interface {
	// CreateItem inserts a new memory item. Returns ErrConflict if an
	// item with the same content hash already exists.
	CreateItem(ctx context.Context, item *types.MemoryItem) error

	// GetItem retrieves an item by ID with its tags and category loaded.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id string) (*types.MemoryItem, error)

	// GetItemsByIDs retrieves full records for the given IDs, keyed by ID.
	// Archived items are excluded when excludeArchived is true. Missing IDs
	// are simply absent from the result, never an error.
	GetItemsByIDs(ctx context.Context, ids []string, excludeArchived bool) (map[string]*types.MemoryItem, error)

	// ListItems retrieves items newest-first with optional filtering.
	// Archived items are always excluded.
	ListItems(ctx context.Context, opts ListOptions) ([]types.MemoryItem, error)

	// UpdateItem persists changed scalar fields of an existing item.
	// Returns ErrNotFound if the item doesn't exist and ErrConflict if the
	// new content hash collides with another item.
	UpdateItem(ctx context.Context, item *types.MemoryItem) error

	// DeleteItem removes an item and cascades its association rows.
	// Returns ErrNotFound if the item doesn't exist.
	DeleteItem(ctx context.Context, id string) error

	// ContentHashExists reports whether any item carries the given
	// content fingerprint.
	ContentHashExists(ctx context.Context, hash string) (bool, error)

	// TouchAccess atomically increments access_count and stamps
	// accessed_at for the given item.
	TouchAccess(ctx context.Context, id string) error
}

// TagStore manages tags and their item associations.
type TagStore interface {
	// GetOrCreateTags canonicalizes names to lowercase, creates missing
	// tags, and returns the full tag rows. Blank names are skipped.
	GetOrCreateTags(ctx context.Context, names []string) ([]types.Tag, error)

	// ReplaceItemTags removes all tag links for the item and inserts links
	// to the given tags (association replacement, never append).
	ReplaceItemTags(ctx context.Context, itemID string, tagIDs []int64) error
}

// CategoryStore manages categories and the single-category item link.
type CategoryStore interface {
	// ListCategories returns all categories ordered by name, with
	// MemoryCount populated.
	ListCategories(ctx context.Context) ([]types.Category, error)

	// GetCategory retrieves a category by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetCategory(ctx context.Context, id int64) (*types.Category, error)

	// CreateCategory inserts a new category. Returns ErrConflict when a
	// category with the same name (case-insensitive) already exists; a
	// racing duplicate insert loses with the same error.
	CreateCategory(ctx context.Context, name string) (*types.Category, error)

	// RenameCategory changes a category's name. Returns ErrNotFound for an
	// unknown ID and ErrConflict when the name is taken by another category.
	RenameCategory(ctx context.Context, id int64, name string) error

	// DeleteCategory removes a category and its item links.
	// Returns ErrNotFound if it doesn't exist.
	DeleteCategory(ctx context.Context, id int64) error

	// SetItemCategory replaces the item's category link. A zero categoryID
	// clears the link without setting a new one.
	SetItemCategory(ctx context.Context, itemID string, categoryID int64) error
}

// KeywordSearcher performs the lexical half of hybrid search.
type KeywordSearcher interface {
	// KeywordSearch returns items whose title or content contains the
	// query (case-insensitive), capped at limit rows. Scoring is left to
	// the caller; rows carry the fields needed to score.
	KeywordSearch(ctx context.Context, query string, limit int) ([]KeywordHit, error)
}

// Store is the full relational storage contract used by the engine.
type Store interface {
	ItemStore
	TagStore
	CategoryStore
	KeywordSearcher

	// Close releases any resources held by the store.
	Close() error
}
