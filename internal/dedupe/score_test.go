package dedupe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]any
		expected int
	}{
		{"empty record", map[string]any{}, 0},
		{"short description", map[string]any{"description": "ok"}, 1},
		{"medium description", map[string]any{"description": "fifteen chars.."}, 2},
		{"long description", map[string]any{"description": strings.Repeat("x", 40)}, 3},
		{"one image", map[string]any{"imageUrls": []any{"a"}}, 2},
		{"three images", map[string]any{"images": []any{"a", "b", "c"}}, 3},
		{"website", map[string]any{"websiteUrl": "https://example.org"}, 1},
		{"website alt spelling", map[string]any{"website": "https://example.org"}, 1},
		{"category", map[string]any{"category": "nature"}, 1},
		{"validated", map[string]any{"isValidated": true}, 1},
		{"validated false", map[string]any{"isValidated": false}, 0},
		{
			name: "everything",
			fields: map[string]any{
				"description":   strings.Repeat("x", 50),
				"imageUrls":     []any{"a", "b", "c", "d"},
				"websiteUrl":    "https://example.org",
				"categoryGroup": "culture",
				"isValidated":   true,
			},
			expected: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, QualityScore(rec("id", tt.fields)))
		})
	}
}

func TestQualityScore_Monotonic(t *testing.T) {
	// Adding any completeness signal never decreases the score.
	base := map[string]any{"name": "spot"}
	additions := []map[string]any{
		{"description": "a cozy place"},
		{"imageUrls": []any{"a"}},
		{"website": "https://example.org"},
		{"category": "nature"},
		{"isValidated": true},
	}

	baseScore := QualityScore(rec("id", base))
	for _, add := range additions {
		enriched := map[string]any{}
		for k, v := range base {
			enriched[k] = v
		}
		for k, v := range add {
			enriched[k] = v
		}
		assert.GreaterOrEqual(t, QualityScore(rec("id", enriched)), baseScore)
	}
}

func TestQualityScore_DescriptionCountsRunes(t *testing.T) {
	// 20 accented characters are 20 chars, not 40 bytes.
	accented := strings.Repeat("é", 20)
	assert.Equal(t, 2, QualityScore(rec("id", map[string]any{"description": accented})))
}
