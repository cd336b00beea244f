package zettel

import (
	"errors"
	"testing"

	"github.com/starford/zettelport/internal/apperr"
)

func TestExtract_WellFormedBlocks(t *testing.T) {
	doc := "preamble to ignore\n" +
		"**Title:** First Note\n**Content:**\nBody one.\n" +
		"**Title:** Second Note\n**Content:**\nBody two.\n"
	res, err := Extract(doc, DefaultMarkers())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(res.Records))
	}
	if res.Records[0].OriginalTitle != "First Note" || res.Records[0].Body != "Body one." {
		t.Errorf("first record = %+v", res.Records[0])
	}
	if res.Records[1].OriginalTitle != "Second Note" {
		t.Errorf("second record = %+v", res.Records[1])
	}
	if len(res.Skipped) != 0 {
		t.Errorf("unexpected skips: %v", res.Skipped)
	}
}

func TestExtract_TitleMapUsesExactOriginals(t *testing.T) {
	doc := "**Title:** My: Note/One\n**Content:**\ntext\n"
	res, err := Extract(doc, DefaultMarkers())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	got, ok := res.Titles["My: Note/One"]
	if !ok {
		t.Fatalf("title map missing original key, map = %v", res.Titles)
	}
	if got != "My - Note or One" {
		t.Errorf("sanitized = %q, want %q", got, "My - Note or One")
	}
}

func TestExtract_NoTitleMarkerIsFatal(t *testing.T) {
	_, err := Extract("just some text without delimiters", DefaultMarkers())
	if !errors.Is(err, apperr.ErrNoZettels) {
		t.Fatalf("err = %v, want ErrNoZettels", err)
	}
}

func TestExtract_MissingContentMarkerSkipsBlock(t *testing.T) {
	doc := "**Title:** Broken block without content\n" +
		"**Title:** Good\n**Content:**\nfine\n"
	res, err := Extract(doc, DefaultMarkers())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].OriginalTitle != "Good" {
		t.Fatalf("records = %+v", res.Records)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != SkipNoContentMarker {
		t.Errorf("skipped = %+v", res.Skipped)
	}
	if res.Skipped[0].Block != 1 {
		t.Errorf("skipped block = %d, want 1", res.Skipped[0].Block)
	}
}

func TestExtract_EmptyTitleSkipsBlock(t *testing.T) {
	doc := "**Title:**   \n**Content:**\norphan body\n" +
		"**Title:** Kept\n**Content:**\nbody\n"
	res, err := Extract(doc, DefaultMarkers())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %+v", res.Records)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != SkipEmptyTitle {
		t.Errorf("skipped = %+v", res.Skipped)
	}
}

func TestExtract_BodyCutAtSeparator(t *testing.T) {
	doc := "**Title:** A\n**Content:**\nreal content\n---\ntrailing commentary\n"
	res, err := Extract(doc, DefaultMarkers())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Records[0].Body != "real content" {
		t.Errorf("body = %q, want %q", res.Records[0].Body, "real content")
	}
}

func TestExtract_CodeFenceLinesDropped(t *testing.T) {
	doc := "**Title:** A\n**Content:**\n```markdown\nkept line\n  ```\nanother kept\n"
	res, err := Extract(doc, DefaultMarkers())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "kept line\nanother kept"
	if res.Records[0].Body != want {
		t.Errorf("body = %q, want %q", res.Records[0].Body, want)
	}
}

func TestExtract_CustomMarkers(t *testing.T) {
	doc := "@@T@@ Custom\n@@C@@\nbody\n"
	res, err := Extract(doc, Markers{Title: "@@T@@", Content: "@@C@@"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].OriginalTitle != "Custom" {
		t.Errorf("records = %+v", res.Records)
	}
}
