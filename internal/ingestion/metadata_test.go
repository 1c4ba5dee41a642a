package ingestion

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNewMetadata(t *testing.T) {
	m := NewMetadata("résumé text", false)

	assert.Len(t, m.Hash, 64)
	assert.Equal(t, m.Hash[:12], m.ShortHash())
	assert.Equal(t, len("résumé text"), m.Bytes)
	assert.False(t, m.Truncated)

	// Same content should produce same hash
	assert.Equal(t, m.Hash, NewMetadata("résumé text", true).Hash)
	assert.NotEqual(t, m.Hash, NewMetadata("resume text", false).Hash)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		max       int
		want      string
		truncated bool
	}{
		{name: "under limit", text: "hello", max: 10, want: "hello"},
		{name: "no limit", text: "hello", max: 0, want: "hello"},
		{name: "ascii cut", text: "hello world", max: 5, want: "hello", truncated: true},
		{name: "never splits a rune", text: "résumé", max: 2, want: "r", truncated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Truncate(tt.text, tt.max)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.truncated, truncated)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
