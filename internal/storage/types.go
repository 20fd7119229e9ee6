package storage

import "github.com/mitanshu-2004/memory-assistant/pkg/types"

// ListOptions provides filtering and pagination for item listings.
type ListOptions struct {
	// SourceType filters by origin (text, file, url). Empty means all.
	SourceType types.SourceType

	// FavoritesOnly restricts results to favorited items.
	FavoritesOnly bool

	// CategoryID filters to items linked to this category. Zero means all.
	CategoryID int64

	// Offset is the number of items to skip.
	Offset int

	// Limit is the maximum number of items to return (default 100, max 500).
	Limit int
}

// Normalize applies defaults and bounds to the options.
func (o *ListOptions) Normalize() {
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.Limit < 1 {
		o.Limit = 100
	}
	if o.Limit > 500 {
		o.Limit = 500
	}
}

// KeywordHit is one row from a lexical search, carrying just enough to
// let the search engine compute a lexical score.
type KeywordHit struct {
	ID      string
	Title   string
	Content string
}
