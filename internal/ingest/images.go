package ingest

import (
	"regexp"
	"strings"
)

// Image references arrive in wildly different shapes depending on the
// source: full URLs, protocol-relative URLs, Wikimedia Commons "File:"
// titles, wikidata Q-ids, or bare filenames. Everything is normalized to a
// fetchable https URL or dropped.

var wikidataIDRe = regexp.MustCompile(`^Q\d+$`)

// imageCandidateKeys lists scalar fields that may hold a single image
// reference, checked after the imageUrls/images lists.
var imageCandidateKeys = []string{"image", "photo", "thumbnail", "cover_image", "wikimedia_commons"}

// NormalizeImageURLs collects, normalizes, and dedupes image references
// from a raw POI, capped at maxImages.
func NormalizeImageURLs(fields map[string]any, maxImages int) []string {
	var candidates []any
	for _, key := range []string{"imageUrls", "images"} {
		if list, ok := fields[key].([]any); ok {
			candidates = append(candidates, list...)
		}
		if list, ok := fields[key].([]string); ok {
			for _, v := range list {
				candidates = append(candidates, v)
			}
		}
	}
	for _, key := range imageCandidateKeys {
		candidates = append(candidates, fields[key])
	}

	urls := make([]string, 0, maxImages)
	seen := make(map[string]bool)
	for _, candidate := range candidates {
		normalized := normalizeImageValue(candidate)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		urls = append(urls, normalized)
		if len(urls) >= maxImages {
			break
		}
	}
	return urls
}

func normalizeImageValue(raw any) string {
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	value := strings.TrimSpace(s)
	if value == "" {
		return ""
	}

	if strings.HasPrefix(value, "//") {
		return "https:" + value
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}

	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "file:") || strings.HasPrefix(lower, "wikimedia_commons:") {
		_, name, _ := strings.Cut(value, ":")
		return commonsFilePath(name)
	}

	if wikidataIDRe.MatchString(value) {
		return "https://www.wikidata.org/wiki/" + value
	}

	// Bare filename with an extension: assume a Commons upload.
	if !strings.Contains(value, "/") && strings.Contains(value, ".") {
		return commonsFilePath(value)
	}

	return ""
}

func commonsFilePath(name string) string {
	filename := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if filename == "" {
		return ""
	}
	return "https://commons.wikimedia.org/wiki/Special:FilePath/" + filename
}
