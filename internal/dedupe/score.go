package dedupe

import (
	"unicode/utf8"

	"github.com/allspots/spots-cli/internal/model"
)

// QualityScore ranks a record by its completeness signals. Higher is
// better. The score is a relative heuristic recomputed on each run, only
// ever compared within a duplicate group, and monotonic: adding a signal
// never lowers it. Max attainable is 9.
func QualityScore(rec model.Record) int {
	score := 0

	switch descLen := utf8.RuneCountInString(StringField(rec.Fields, "description")); {
	case descLen >= 40:
		score += 3
	case descLen >= 15:
		score += 2
	case descLen > 0:
		score++
	}

	switch images := ImageCount(rec.Fields); {
	case images >= 3:
		score += 3
	case images >= 1:
		score += 2
	}

	if StringField(rec.Fields, "websiteUrl", "website") != "" {
		score++
	}
	if StringField(rec.Fields, "categoryGroup", "category") != "" {
		score++
	}
	if validated, ok := rec.Fields["isValidated"].(bool); ok && validated {
		score++
	}

	return score
}
