// Package fingerprint computes the content fingerprint used for
// deduplication. The fingerprint is a SHA-256 over the raw UTF-8 bytes of
// the content: ill-formed byte sequences are replaced with U+FFFD rather
// than failing, and whitespace is deliberately not normalized, so two
// contents differing only in incidental whitespace fingerprint as
// distinct items.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Content returns the hex-encoded SHA-256 fingerprint of text.
// Decoding errors are replaced, never fatal: the same malformed input
// always produces the same fingerprint.
func Content(text string) string {
	sanitized, _, err := transform.String(runes.ReplaceIllFormed(), text)
	if err != nil {
		// ReplaceIllFormed never errors; fall back to the raw bytes if the
		// transform stack ever changes that.
		sanitized = text
	}
	sum := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(sum[:])
}
