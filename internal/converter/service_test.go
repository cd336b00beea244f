package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/zettelport/internal/apperr"
	"github.com/starford/zettelport/internal/testutil"
	"github.com/starford/zettelport/internal/zettel"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return New(testutil.Logger(), zettel.DefaultMarkers(), CollisionOverwrite, nil)
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestConvert_SingleZettelScenario(t *testing.T) {
	input := testutil.WriteInput(t,
		"**Title:** My: Note/One\n**Content:**\nSee [[My: Note/One]] and #tag\n---\nignored")
	out := filepath.Join(t.TempDir(), "pages")

	res, err := newService(t).Convert(context.Background(), input, out)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(res.Created) != 1 || res.Created[0] != "My - Note or One.md" {
		t.Fatalf("created = %v", res.Created)
	}
	got := readOutput(t, out, "My - Note or One.md")
	want := "- \n  See [[My - Note or One]] and \\#tag"
	if got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestConvert_CrossReferencesBetweenNotes(t *testing.T) {
	input := testutil.WriteInput(t,
		"**Title:** First: Note\n**Content:**\nPoints to [[Second/Note]].\n"+
			"**Title:** Second/Note\n**Content:**\nPoints back to [[First: Note]].\n")
	out := filepath.Join(t.TempDir(), "pages")

	res, err := newService(t).Convert(context.Background(), input, out)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(res.Created) != 2 {
		t.Fatalf("created = %v", res.Created)
	}

	first := readOutput(t, out, "First - Note.md")
	if first != "- \n  Points to [[Second or Note]]." {
		t.Errorf("first = %q", first)
	}
	second := readOutput(t, out, "Second or Note.md")
	if second != "- \n  Points back to [[First - Note]]." {
		t.Errorf("second = %q", second)
	}
}

func TestConvert_InputNotFound(t *testing.T) {
	_, err := newService(t).Convert(context.Background(),
		filepath.Join(t.TempDir(), "absent.txt"), t.TempDir())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestConvert_NoZettelsIsFatal(t *testing.T) {
	input := testutil.WriteInput(t, "nothing delimited here")
	_, err := newService(t).Convert(context.Background(), input, filepath.Join(t.TempDir(), "pages"))
	if !errors.Is(err, apperr.ErrNoZettels) {
		t.Fatalf("err = %v, want ErrNoZettels", err)
	}
}

func TestConvert_MalformedBlockSkippedOthersWritten(t *testing.T) {
	input := testutil.WriteInput(t,
		"**Title:** Broken without content marker\n"+
			"**Title:** Valid\n**Content:**\nbody\n")
	out := filepath.Join(t.TempDir(), "pages")

	res, err := newService(t).Convert(context.Background(), input, out)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(res.Created) != 1 || res.Created[0] != "Valid.md" {
		t.Fatalf("created = %v", res.Created)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != zettel.SkipNoContentMarker {
		t.Errorf("skipped = %+v", res.Skipped)
	}
}

func TestConvert_CollisionOverwriteLastWins(t *testing.T) {
	// "Clash" and "'Clash'" are distinct originals with the same sanitized name.
	input := testutil.WriteInput(t,
		"**Title:** Clash\n**Content:**\nearlier\n"+
			"**Title:** 'Clash'\n**Content:**\nlater\n")
	out := filepath.Join(t.TempDir(), "pages")

	svc := New(testutil.Logger(), zettel.DefaultMarkers(), CollisionOverwrite, nil)
	res, err := svc.Convert(context.Background(), input, out)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(res.Created) != 1 || res.Created[0] != "Clash.md" {
		t.Fatalf("created = %v", res.Created)
	}
	if got := readOutput(t, out, "Clash.md"); got != "- \n  later" {
		t.Errorf("content = %q, want later note", got)
	}
}

func TestConvert_CollisionFailAborts(t *testing.T) {
	input := testutil.WriteInput(t,
		"**Title:** Clash\n**Content:**\nearlier\n"+
			"**Title:** 'Clash'\n**Content:**\nlater\n")
	out := filepath.Join(t.TempDir(), "pages")

	svc := New(testutil.Logger(), zettel.DefaultMarkers(), CollisionFail, nil)
	_, err := svc.Convert(context.Background(), input, out)
	if !errors.Is(err, apperr.ErrDuplicateTitle) {
		t.Fatalf("err = %v, want ErrDuplicateTitle", err)
	}
	if _, statErr := os.Stat(filepath.Join(out, "Clash.md")); statErr == nil {
		t.Error("no file should be written when collision policy is fail")
	}
}

func TestConvert_PopulatesIndex(t *testing.T) {
	db := testutil.TestDB(t)
	input := testutil.WriteInput(t,
		"**Title:** Hub\n**Content:**\nLinks to [[Spoke]] and [[Missing]].\n"+
			"**Title:** Spoke\n**Content:**\nplain\n")
	out := filepath.Join(t.TempDir(), "pages")

	svc := New(testutil.Logger(), zettel.DefaultMarkers(), CollisionOverwrite, db)
	if _, err := svc.Convert(context.Background(), input, out); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Notes != 2 || stats.Links != 2 || stats.Unresolved != 1 {
		t.Errorf("stats = %+v, want 2 notes, 2 links, 1 unresolved", stats)
	}

	unresolved, err := db.Unresolved()
	if err != nil {
		t.Fatalf("Unresolved: %v", err)
	}
	if len(unresolved) != 1 || unresolved[0].Target != "Missing" {
		t.Errorf("unresolved = %+v", unresolved)
	}
}

func TestConvert_ReindexReplacesPreviousRun(t *testing.T) {
	db := testutil.TestDB(t)
	svc := New(testutil.Logger(), zettel.DefaultMarkers(), CollisionOverwrite, db)
	out := filepath.Join(t.TempDir(), "pages")

	first := testutil.WriteInput(t, "**Title:** Old\n**Content:**\nv1\n")
	if _, err := svc.Convert(context.Background(), first, out); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	second := testutil.WriteInput(t, "**Title:** New\n**Content:**\nv2\n")
	if _, err := svc.Convert(context.Background(), second, out); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if _, err := db.GetNote("Old.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stale note should be gone, err = %v", err)
	}
	if _, err := db.GetNote("New.md"); err != nil {
		t.Errorf("GetNote(New.md): %v", err)
	}
}
