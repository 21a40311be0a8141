package dedupe

import (
	"slices"
	"strings"

	"github.com/allspots/spots-cli/internal/model"
)

// PickKeeper chooses the single survivor of a duplicate group. The order
// is strict and total, so the same input (in any permutation) always
// yields the same keeper:
//  1. higher quality score
//  2. more recent updatedAt (absent/unparseable sorts oldest)
//  3. lexicographically smaller document id — no semantic meaning, just a
//     reproducible tiebreak
//
// records must be non-empty.
func PickKeeper(records []model.Record) model.Record {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, compareKeeper)
	return sorted[0]
}

func compareKeeper(a, b model.Record) int {
	if diff := QualityScore(b) - QualityScore(a); diff != 0 {
		return diff
	}
	aMillis, bMillis := UpdatedAtMillis(a.Fields), UpdatedAtMillis(b.Fields)
	if aMillis != bMillis {
		if bMillis > aMillis {
			return 1
		}
		return -1
	}
	return strings.Compare(a.ID, b.ID)
}
