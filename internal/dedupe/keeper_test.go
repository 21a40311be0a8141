package dedupe

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allspots/spots-cli/internal/model"
)

func TestPickKeeper_HigherScoreWins(t *testing.T) {
	rich := rec("zzz", map[string]any{
		"description": strings.Repeat("x", 50),
		"imageUrls":   []any{"a", "b", "c", "d"},
	})
	blank := rec("aaa", map[string]any{})

	keeper := PickKeeper([]model.Record{blank, rich})
	assert.Equal(t, "zzz", keeper.ID)
}

func TestPickKeeper_RecencyBreaksScoreTie(t *testing.T) {
	older := rec("aaa", map[string]any{"updatedAt": "2023-01-01T00:00:00Z"})
	newer := rec("zzz", map[string]any{"updatedAt": "2024-01-01T00:00:00Z"})

	keeper := PickKeeper([]model.Record{older, newer})
	assert.Equal(t, "zzz", keeper.ID)
}

func TestPickKeeper_MissingUpdatedAtSortsOldest(t *testing.T) {
	dated := rec("zzz", map[string]any{"updatedAt": "2020-06-01T00:00:00Z"})
	undated := rec("aaa", map[string]any{})

	keeper := PickKeeper([]model.Record{undated, dated})
	assert.Equal(t, "zzz", keeper.ID)
}

func TestPickKeeper_IDBreaksFullTie(t *testing.T) {
	a := rec("aaa", map[string]any{})
	b := rec("bbb", map[string]any{})

	keeper := PickKeeper([]model.Record{b, a})
	assert.Equal(t, "aaa", keeper.ID)
}

func TestPickKeeper_DeterministicUnderShuffle(t *testing.T) {
	group := []model.Record{
		rec("a", map[string]any{"description": "decent length text"}),
		rec("b", map[string]any{"imageUrls": []any{"x"}}),
		rec("c", map[string]any{"updatedAt": "2024-05-01T00:00:00Z"}),
		rec("d", map[string]any{}),
		rec("e", map[string]any{"description": "decent length text"}),
	}

	expected := PickKeeper(group).ID
	for range 20 {
		shuffled := make([]model.Record, len(group))
		copy(shuffled, group)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, expected, PickKeeper(shuffled).ID)
	}
}

func TestPickKeeper_ScenarioRichVsBlank(t *testing.T) {
	// Same strong identifier, one record with a 50-char description and
	// 4 images (score 6), the other blank (score 0).
	richFields := map[string]any{
		"source": model.SourceOSM, "osmId": "12345",
		"description": strings.Repeat("d", 50),
		"imageUrls":   []any{"1", "2", "3", "4"},
	}
	blankFields := map[string]any{"source": model.SourceOSM, "osmId": "12345"}

	rich := rec("rich", richFields)
	blank := rec("blank", blankFields)

	assert.Equal(t, 6, QualityScore(rich))
	assert.Equal(t, 0, QualityScore(blank))
	assert.Equal(t, "rich", PickKeeper([]model.Record{blank, rich}).ID)
}
