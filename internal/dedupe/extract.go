package dedupe

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Field extraction for the polymorphic shapes the spots collection has
// accumulated across import sources. Each logical value is an ordered list
// of extraction attempts; the first shape that is present wins. New source
// schemas are handled here, never in the keying or scoring logic.

// ExtractCoords returns the record position as decimal degrees.
// Attempts, in order: flat numeric lat/lng fields; a nested location
// object with latitude/longitude; the same object with the underscore
// spelling a raw JSON dump of a store geo-point uses.
func ExtractCoords(fields map[string]any) (lat, lng float64, ok bool) {
	if lat, okLat := asNumber(fields["lat"]); okLat {
		if lng, okLng := asNumber(fields["lng"]); okLng {
			return lat, lng, true
		}
	}

	loc, _ := fields["location"].(map[string]any)
	if loc == nil {
		return 0, 0, false
	}
	for _, keys := range [][2]string{{"latitude", "longitude"}, {"_latitude", "_longitude"}} {
		if lat, okLat := asNumber(loc[keys[0]]); okLat {
			if lng, okLng := asNumber(loc[keys[1]]); okLng {
				return lat, lng, true
			}
		}
	}
	return 0, 0, false
}

// StringField returns the first non-blank string value among keys, trimmed.
func StringField(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// ImageCount returns the larger length of the two image list spellings.
func ImageCount(fields map[string]any) int {
	n := listLen(fields["imageUrls"])
	if m := listLen(fields["images"]); m > n {
		n = m
	}
	return n
}

// UpdatedAtMillis reads the updatedAt field as milliseconds since epoch.
// Accepted shapes: decoded time.Time, a {_seconds,_nanoseconds} object,
// a numeric millisecond value, or an ISO-8601 string. Anything absent or
// unparseable compares as epoch 0, i.e. oldest.
func UpdatedAtMillis(fields map[string]any) int64 {
	return timeMillis(fields["updatedAt"])
}

func timeMillis(v any) int64 {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli()
	case map[string]any:
		if secs, ok := asNumber(t["_seconds"]); ok {
			nanos, _ := asNumber(t["_nanoseconds"])
			return int64(secs)*1000 + int64(nanos)/int64(time.Millisecond)
		}
	case string:
		if parsed, err := parseISOTime(t); err == nil {
			return parsed.UnixMilli()
		}
	default:
		if millis, ok := asNumber(v); ok {
			return int64(millis)
		}
	}
	return 0
}

// parseISOTime accepts RFC 3339 with or without fractional seconds, and
// the zone-less variant some exports produce (interpreted as UTC).
func parseISOTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func listLen(v any) int {
	switch l := v.(type) {
	case []any:
		return len(l)
	case []string:
		return len(l)
	default:
		return 0
	}
}
