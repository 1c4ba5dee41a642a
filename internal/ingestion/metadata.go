package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// Metadata describes an ingested résumé without carrying its text, so it
// is safe to log.
type Metadata struct {
	Hash      string `json:"hash"` // SHA256 hex digest of the analyzed text
	Bytes     int    `json:"bytes"`
	Truncated bool   `json:"truncated"`
}

// NewMetadata fingerprints the text that will be analyzed
func NewMetadata(content string, truncated bool) *Metadata {
	return &Metadata{
		Hash:      computeHash(content),
		Bytes:     len(content),
		Truncated: truncated,
	}
}

// ShortHash returns the first 12 hex digits of the hash
func (m *Metadata) ShortHash() string {
	if len(m.Hash) < 12 {
		return m.Hash
	}
	return m.Hash[:12]
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// Truncate cuts text to at most maxBytes without splitting a rune.
// A non-positive maxBytes disables the limit.
func Truncate(text string, maxBytes int) (string, bool) {
	if maxBytes <= 0 || len(text) <= maxBytes {
		return text, false
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut], true
}
