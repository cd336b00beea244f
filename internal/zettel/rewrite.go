package zettel

import (
	"sort"
	"strings"
)

// RewriteLinks replaces every bracketed reference to an original title with
// the bracketed sanitized title: [[My: Note]] → [[My - Note]]. Replacement
// is literal substring substitution; titles routinely contain characters
// that are special in pattern syntax, so no pattern compilation happens
// here.
//
// Titles are applied longest first (ties lexicographic) so that when one
// title's bracketed form contains another's, the longer reference wins and
// the result does not depend on map iteration order.
func RewriteLinks(body string, titles map[string]string) string {
	if len(titles) == 0 {
		return body
	}
	keys := make([]string, 0, len(titles))
	for k := range titles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, original := range keys {
		body = strings.ReplaceAll(body, "[["+original+"]]", "[["+titles[original]+"]]")
	}
	return body
}
