// Package types defines the domain model for the memory assistant:
// memory items, tags, categories, and the enums shared across the
// ingestion and search layers.
package types

// SourceType describes where a memory item's content came from.
type SourceType string

const (
	SourceText SourceType = "text"
	SourceFile SourceType = "file"
	SourceURL  SourceType = "url"
)

// Valid reports whether s is one of the known source types.
func (s SourceType) Valid() bool {
	switch s {
	case SourceText, SourceFile, SourceURL:
		return true
	}
	return false
}

// SearchMode selects which retrieval paths contribute to a search.
type SearchMode string

const (
	// SearchHybrid fuses semantic and keyword results (the default).
	SearchHybrid SearchMode = "hybrid"
	// SearchSemantic uses only embedding similarity.
	SearchSemantic SearchMode = "semantic"
	// SearchKeyword uses only lexical matching over title and content.
	SearchKeyword SearchMode = "keyword"
)

// Valid reports whether m is one of the known search modes.
func (m SearchMode) Valid() bool {
	switch m {
	case SearchHybrid, SearchSemantic, SearchKeyword:
		return true
	}
	return false
}

// UsesSemantic reports whether the mode includes the embedding path.
func (m SearchMode) UsesSemantic() bool {
	return m == SearchHybrid || m == SearchSemantic
}

// UsesKeyword reports whether the mode includes the lexical path.
func (m SearchMode) UsesKeyword() bool {
	return m == SearchHybrid || m == SearchKeyword
}
