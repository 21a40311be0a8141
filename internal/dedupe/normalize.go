package dedupe

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize standardizes free text for use inside canonical keys:
//  1. Unicode NFD decomposition, dropping combining marks (é -> e)
//  2. Lowercase + trim
//  3. Collapse every run of non-alphanumerics into a single underscore
//  4. Strip leading/trailing underscores
//
// Every human-entered string that participates in a key goes through this
// exact function, otherwise casing/accent variants of the same place would
// fail to merge.
func Normalize(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), s)
	if err != nil {
		stripped = s
	}
	out := strings.ToLower(strings.TrimSpace(stripped))
	out = nonAlnumRe.ReplaceAllString(out, "_")
	return strings.Trim(out, "_")
}
