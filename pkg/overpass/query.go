package overpass

import (
	"fmt"
	"strings"
)

// POI category vocabulary. These are the app-facing groupings every source
// gets classified into.
const (
	CategoryCulture   = "culture"
	CategoryNature    = "nature"
	CategoryHistoire  = "histoire"
	CategoryGustative = "experience_gustative"
	CategoryActivites = "activites"
)

// AllCategories is the default filter set when a caller asks for nothing
// specific.
var AllCategories = []string{
	CategoryCulture,
	CategoryNature,
	CategoryHistoire,
	CategoryGustative,
	CategoryActivites,
}

// categoryTags maps each category to the OSM tag filters that select it.
// Order within a category decides nothing; classification (classify.go)
// resolves elements matching several categories.
var categoryTags = map[string][]string{
	CategoryCulture:   {"tourism=museum", "tourism=art_gallery", "tourism=attraction"},
	CategoryNature:    {"leisure=park", "tourism=viewpoint", "natural=peak", "natural=waterfall"},
	CategoryHistoire:  {"historic=monument", "historic=ruins", "historic=castle"},
	CategoryGustative: {"amenity=restaurant", "amenity=cafe", "amenity=marketplace"},
	CategoryActivites: {"leisure=sports_centre", "leisure=stadium", "tourism=alpine_hut"},
}

// TagFilters expands categories into the OSM tag filters to query.
// Unknown categories are ignored; an empty selection means all.
func TagFilters(categories []string) []string {
	if len(categories) == 0 {
		categories = AllCategories
	}
	var filters []string
	seen := make(map[string]bool)
	for _, cat := range AllCategories {
		if !contains(categories, cat) {
			continue
		}
		for _, tag := range categoryTags[cat] {
			if !seen[tag] {
				seen[tag] = true
				filters = append(filters, tag)
			}
		}
	}
	return filters
}

// BuildQuery renders the Overpass QL query for named nodes matching any of
// the tag filters within radius meters of (lat, lng).
func BuildQuery(lat, lng float64, radius int, tagFilters []string) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(")
	for _, tag := range tagFilters {
		k, v, _ := strings.Cut(tag, "=")
		fmt.Fprintf(&b, "node[%s=%s](around:%d,%f,%f);\n", k, v, radius, lat, lng)
	}
	b.WriteString(");\nout center 200;")
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
