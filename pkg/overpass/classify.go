package overpass

// Classify resolves an element's app category from its OSM tags, honoring
// the caller's category filter. Checked in the fixed AllCategories order so
// an element matching several categories classifies deterministically.
// Returns "" when nothing matches.
func Classify(tags map[string]string, categories []string) string {
	if len(categories) == 0 {
		categories = AllCategories
	}
	for _, cat := range AllCategories {
		if !contains(categories, cat) {
			continue
		}
		for _, tag := range categoryTags[cat] {
			k, v := splitTag(tag)
			if tags[k] == v {
				return cat
			}
		}
	}
	return ""
}

// SubCategory picks the most specific OSM tag value as a sub-category hint.
func SubCategory(tags map[string]string) string {
	for _, k := range []string{"tourism", "amenity", "historic", "natural", "leisure"} {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}

func splitTag(tag string) (k, v string) {
	for i := range tag {
		if tag[i] == '=' {
			return tag[:i], tag[i+1:]
		}
	}
	return tag, ""
}
