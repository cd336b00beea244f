package zettel

import (
	"regexp"
	"strings"
)

// tagsPrefix marks a typed-property line whose marker characters must
// survive verbatim.
const tagsPrefix = "tags::"

var hashTokenRe = regexp.MustCompile(`#(\S+)`)

// FormatContent produces the final file content for a rewritten body.
// Every "#token" outside a tags:: property line gets the hash escaped with a
// backslash so the destination outliner does not auto-tag it. The escaped
// body is then indented two spaces per line and framed under a single
// top-level bullet.
func FormatContent(body string) string {
	lines := strings.Split(body, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), tagsPrefix) {
			out[i] = line
			continue
		}
		out[i] = hashTokenRe.ReplaceAllString(line, `\#$1`)
	}
	for i, line := range out {
		out[i] = "  " + line
	}
	return "- \n" + strings.Join(out, "\n")
}
