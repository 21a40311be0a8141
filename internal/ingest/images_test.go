package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeImageValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"https passthrough", "https://example.org/a.jpg", "https://example.org/a.jpg"},
		{"http passthrough", "http://example.org/a.jpg", "http://example.org/a.jpg"},
		{"protocol relative", "//upload.wikimedia.org/a.jpg", "https://upload.wikimedia.org/a.jpg"},
		{
			"commons file title",
			"File:Tour Eiffel.jpg",
			"https://commons.wikimedia.org/wiki/Special:FilePath/Tour_Eiffel.jpg",
		},
		{
			"wikimedia_commons prefix",
			"wikimedia_commons:Louvre Pyramid.jpg",
			"https://commons.wikimedia.org/wiki/Special:FilePath/Louvre_Pyramid.jpg",
		},
		{"wikidata id", "Q243", "https://www.wikidata.org/wiki/Q243"},
		{
			"bare filename",
			"cathedral.jpg",
			"https://commons.wikimedia.org/wiki/Special:FilePath/cathedral.jpg",
		},
		{"path without scheme dropped", "some/relative/path.jpg", ""},
		{"word without extension dropped", "notanimage", ""},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"non string", 42, ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeImageValue(tt.input))
		})
	}
}

func TestNormalizeImageURLs(t *testing.T) {
	fields := map[string]any{
		"imageUrls": []any{"https://a.example/1.jpg", "//b.example/2.jpg"},
		"images":    []string{"https://a.example/1.jpg"}, // duplicate of first
		"image":     "File:Notre Dame.jpg",
		"photo":     "garbage",
	}

	urls := NormalizeImageURLs(fields, 5)
	assert.Equal(t, []string{
		"https://a.example/1.jpg",
		"https://b.example/2.jpg",
		"https://commons.wikimedia.org/wiki/Special:FilePath/Notre_Dame.jpg",
	}, urls)
}

func TestNormalizeImageURLs_Cap(t *testing.T) {
	fields := map[string]any{
		"imageUrls": []any{
			"https://x.example/1.jpg",
			"https://x.example/2.jpg",
			"https://x.example/3.jpg",
			"https://x.example/4.jpg",
		},
	}
	assert.Len(t, NormalizeImageURLs(fields, 2), 2)
}

func TestNormalizeImageURLs_NoImages(t *testing.T) {
	urls := NormalizeImageURLs(map[string]any{"name": "nothing here"}, 5)
	assert.Empty(t, urls)
}
