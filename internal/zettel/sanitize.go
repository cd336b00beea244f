// Package zettel implements the pipeline that turns a flat delimited Zettel
// document into per-note Markdown content: extraction, title sanitization,
// wikilink rewriting, and outliner formatting.
package zettel

import (
	"regexp"
	"strings"
)

// trimCutset covers whitespace plus the quoting characters authors wrap
// titles in. Used on both ends of SanitizeTitle so the rule is idempotent
// even when illegal-character removal unmasks a trailing quote.
const trimCutset = " \t\r\n'`\""

var (
	illegalRe    = regexp.MustCompile(`[<>"\\|?*]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SanitizeTitle converts an as-authored title into a name safe to use as a
// filesystem path segment. Colons become " -" (title-subtitle separator) and
// slashes become " or " (alternation) so titles stay readable; characters
// illegal on common filesystems are removed; whitespace runs collapse to a
// single space.
//
// The function is deterministic and idempotent: applying it to its own
// output yields the same string.
func SanitizeTitle(title string) string {
	clean := strings.Trim(title, trimCutset)
	clean = strings.ReplaceAll(clean, ":", " -")
	clean = strings.ReplaceAll(clean, "/", " or ")
	clean = illegalRe.ReplaceAllString(clean, "")
	clean = whitespaceRe.ReplaceAllString(clean, " ")
	return strings.Trim(clean, trimCutset)
}
