package dedupe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/allspots/spots-cli/internal/model"
)

// maxImportIDLen caps deterministic import ids so composite fallback ids
// stay within document-id limits.
const maxImportIDLen = 140

// CanonicalKey derives the identity string under which records are grouped.
// Two records with equal keys are considered the same real-world place.
//
// Priority, first match wins — source-guaranteed identifiers must never be
// overridden by the fuzzier geometry-derived fallback:
//  1. a pre-set non-blank dedupeKey, returned verbatim (trimmed)
//  2. osm:<osmId> for records sourced from OpenStreetMap
//  3. gplaces:<normalized place_id> for Google Places records
//  4. source:category:name:lat:lng with text normalized and coordinates
//     rounded to 6 decimals (~11cm)
//  5. doc:<id> — deliberately unique, so unidentifiable records are never
//     merged with anything
//
// The derivation is a pure function of record content: no store lookups,
// no randomness, stable across runs and across the import and
// reconciliation paths.
func CanonicalKey(rec model.Record) string {
	if key := StringField(rec.Fields, "dedupeKey"); key != "" {
		return key
	}

	if rec.Fields["source"] == model.SourceOSM {
		if osmID := anyToString(rec.Fields["osmId"]); osmID != "" {
			return "osm:" + osmID
		}
	}

	if placeID := StringField(rec.Fields, "place_id"); placeID != "" {
		return "gplaces:" + Normalize(placeID)
	}

	if lat, lng, ok := ExtractCoords(rec.Fields); ok {
		return strings.Join(fallbackKeyParts(rec.Fields, lat, lng), ":")
	}

	return "doc:" + rec.ID
}

// ImportID is the import-time variant of CanonicalKey, used as the document
// id for fresh records before they are ever persisted. Same priority order
// and normalization, but coordinates are guaranteed by the caller so the
// composite fallback always resolves. Underscore-separated to stay a valid
// document id.
func ImportID(fields map[string]any, lat, lng float64) string {
	if fields["source"] == model.SourceOSM {
		if osmID := anyToString(fields["osmId"]); osmID != "" {
			return "osm_" + osmID
		}
	}

	if placeID := StringField(fields, "place_id"); placeID != "" {
		return "gplaces_" + Normalize(placeID)
	}

	id := strings.Join(fallbackKeyParts(fields, lat, lng), "_")
	if len(id) > maxImportIDLen {
		id = id[:maxImportIDLen]
	}
	return id
}

// fallbackKeyParts builds the "same source, same kind, same name, same
// spot" composite: normalized source, category (category -> categoryGroup
// -> other), name (blank -> spot), and 6-decimal coordinates.
func fallbackKeyParts(fields map[string]any, lat, lng float64) []string {
	source := StringField(fields, "source")
	if source == "" {
		source = "unknown"
	}
	category := StringField(fields, "category", "categoryGroup")
	if category == "" {
		category = "other"
	}
	name := StringField(fields, "name")
	if name == "" {
		name = "spot"
	}
	return []string{
		Normalize(source),
		Normalize(category),
		Normalize(name),
		fmt.Sprintf("%.6f", lat),
		fmt.Sprintf("%.6f", lng),
	}
}

// anyToString renders identifier values that arrive as either strings or
// JSON numbers. Numeric ids are printed without exponent notation.
func anyToString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}
