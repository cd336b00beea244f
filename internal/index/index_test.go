package index

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/zettelport/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "zettelport-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func upsert(t *testing.T, db *DB, filename, title, body string, links []string) {
	t.Helper()
	err := db.UpsertNote(NoteRow{
		Filename:      filename,
		Title:         title,
		OriginalTitle: title,
		Checksum:      "cs-" + filename,
		UpdatedAt:     time.Now(),
	}, body, links)
	if err != nil {
		t.Fatalf("UpsertNote(%s): %v", filename, err)
	}
}

func TestUpsertAndGetNote(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "A.md", "A", "body", nil)

	n, err := db.GetNote("A.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if n.Title != "A" || n.Checksum != "cs-A.md" {
		t.Errorf("note = %+v", n)
	}
}

func TestGetNote_Missing(t *testing.T) {
	db := testDB(t)
	_, err := db.GetNote("missing.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpsertNote_ReplacesLinks(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "A.md", "A", "body", []string{"B", "C"})
	upsert(t, db, "A.md", "A", "body", []string{"B"})

	s, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.Links != 1 {
		t.Errorf("links = %d, want 1", s.Links)
	}
}

func TestListNotes_OrderAndTotal(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "B.md", "B", "", nil)
	upsert(t, db, "A.md", "A", "", nil)

	rows, total, err := db.ListNotes(10, 0)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("total = %d, len = %d", total, len(rows))
	}
	if rows[0].Filename != "A.md" || rows[1].Filename != "B.md" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestSearch_MatchesTitleAndBody(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "Alpha.md", "Alpha", "about gardening", nil)
	upsert(t, db, "Beta.md", "Beta", "about cooking", nil)

	hits, err := db.Search("garden", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Filename != "Alpha.md" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestUnresolved_ReportsDanglingTargets(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "A.md", "A", "", []string{"B", "Ghost"})
	upsert(t, db, "B.md", "B", "", nil)

	unresolved, err := db.Unresolved()
	if err != nil {
		t.Fatalf("Unresolved: %v", err)
	}
	if len(unresolved) != 1 || unresolved[0].Target != "Ghost" || unresolved[0].Source != "A.md" {
		t.Errorf("unresolved = %+v", unresolved)
	}
}

func TestReset_ClearsEverything(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "A.md", "A", "", []string{"B"})

	if err := db.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	s, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.Notes != 0 || s.Links != 0 {
		t.Errorf("stats after reset = %+v", s)
	}
}
