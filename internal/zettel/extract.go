package zettel

import (
	"fmt"
	"strings"

	"github.com/starford/zettelport/internal/apperr"
)

// Default delimiter tokens separating a note's title from its body.
const (
	DefaultTitleMarker   = "**Title:**"
	DefaultContentMarker = "**Content:**"
)

// Markers holds the delimiter tokens used to split the raw document.
type Markers struct {
	Title   string
	Content string
}

// DefaultMarkers returns the standard Zettel delimiter tokens.
func DefaultMarkers() Markers {
	return Markers{Title: DefaultTitleMarker, Content: DefaultContentMarker}
}

// Record is one note extracted from the raw document.
type Record struct {
	OriginalTitle  string
	SanitizedTitle string
	Body           string
}

// Skip reasons for discarded blocks.
const (
	SkipNoContentMarker = "missing content marker"
	SkipEmptyTitle      = "empty title"
)

// Skip describes a malformed block that was discarded during extraction.
// Block is the 1-based position of the block in the document.
type Skip struct {
	Block  int
	Reason string
}

// ExtractResult holds the ordered records, the original→sanitized title map,
// and any per-block skips. Skips are recoverable: the caller reports them as
// warnings and keeps going.
type ExtractResult struct {
	Records []Record
	Titles  map[string]string
	Skipped []Skip
}

// Extract splits the raw document on the title marker and resolves each
// block into a Record. The segment before the first title marker is preamble
// and is discarded. Blocks without a content marker or with an empty trimmed
// title are skipped. A document with no title marker at all is fatal:
// apperr.ErrNoZettels.
func Extract(doc string, m Markers) (*ExtractResult, error) {
	blocks := strings.Split(doc, m.Title)[1:]
	if len(blocks) == 0 {
		return nil, fmt.Errorf("zettel: input contains no %q delimiters: %w", m.Title, apperr.ErrNoZettels)
	}

	res := &ExtractResult{Titles: make(map[string]string, len(blocks))}
	for i, block := range blocks {
		idx := strings.Index(block, m.Content)
		if idx < 0 {
			res.Skipped = append(res.Skipped, Skip{Block: i + 1, Reason: SkipNoContentMarker})
			continue
		}
		title := strings.TrimSpace(block[:idx])
		if title == "" {
			res.Skipped = append(res.Skipped, Skip{Block: i + 1, Reason: SkipEmptyTitle})
			continue
		}

		body := cleanBody(block[idx+len(m.Content):])
		sanitized := SanitizeTitle(title)
		res.Titles[title] = sanitized
		res.Records = append(res.Records, Record{
			OriginalTitle:  title,
			SanitizedTitle: sanitized,
			Body:           body,
		})
	}
	return res, nil
}

// cleanBody isolates the true note content: everything from the first "---"
// onward is trailing metadata or commentary, and code-fence lines are
// stripped so stray fences from the authoring tool do not leak into notes.
func cleanBody(raw string) string {
	if i := strings.Index(raw, "---"); i >= 0 {
		raw = raw[:i]
	}
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
