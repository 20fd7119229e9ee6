package types

import "time"

// MemoryItem is the atomic unit of storage: one piece of ingested content
// together with its derived metadata and lifecycle bookkeeping.
type MemoryItem struct {
	// Core identification
	ID          string `json:"id"`           // UUID assigned at ingestion
	Content     string `json:"content"`      // Extracted plain-text content (required)
	ContentHash string `json:"content_hash"` // SHA-256 fingerprint of Content, unique across all items

	// Derived metadata
	Title   string `json:"title"`             // Generated or caller-supplied title (never empty)
	Summary string `json:"summary,omitempty"` // Optional generated summary

	// Provenance
	SourceType    SourceType `json:"source_type"`              // text, file, or url
	SourceLocator string     `json:"source_locator,omitempty"` // Original URL or filename
	MimeType      string     `json:"mime_type,omitempty"`

	// Stored artifacts (paths relative to the data directory)
	FilePath         string `json:"file_path,omitempty"`          // Original uploaded bytes, if kept
	PreviewImagePath string `json:"preview_image_path,omitempty"` // Derived preview artifact

	// Lifecycle
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	AccessedAt  *time.Time `json:"accessed_at,omitempty"`
	AccessCount int        `json:"access_count"`
	IsFavorite  bool       `json:"is_favorite"`
	IsArchived  bool       `json:"is_archived"`

	// Associations, populated on read. An item has any number of tags and
	// at most one category; links are replaced wholesale on update.
	Tags     []Tag     `json:"tags,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// Tag is a lowercase label shared across memory items.
type Tag struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"` // Unique, stored lowercase
	UsageCount int    `json:"usage_count"`
}

// Category groups memory items under a single topic. Names are unique
// case-insensitively; uniqueness is enforced by the resolution layer on
// top of the storage constraint.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// MemoryCount is the number of items linked to this category.
	// Populated by list queries; zero otherwise.
	MemoryCount int `json:"memory_count,omitempty"`
}
