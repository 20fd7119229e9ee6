// Package extract turns raw source payloads into indexable plain text.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mitanshu-2004/memory-assistant/pkg/types"
)

// TextExtractor converts a source payload into plain text suitable for
// fingerprinting, metadata generation, and embedding.
type TextExtractor interface {
	// Extract returns the plain-text rendition of the payload.
	Extract(sourceType types.SourceType, data []byte, mimeType string) (string, error)
}

// Plain extracts text from payloads that already are text. Binary payloads
// (invalid UTF-8) are rejected rather than mangled.
type Plain struct{}

// NewPlain creates a plain-text extractor.
func NewPlain() *Plain { return &Plain{} }

// Extract validates and returns the payload as a string.
func (Plain) Extract(sourceType types.SourceType, data []byte, mimeType string) (string, error) {
	if !sourceType.Valid() {
		return "", fmt.Errorf("extract: unknown source type %q", sourceType)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("extract: payload is not valid UTF-8 text (mime type %q)", mimeType)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("extract: payload contains no text")
	}
	return text, nil
}

var _ TextExtractor = (*Plain)(nil)
