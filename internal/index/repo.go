package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/zettelport/internal/apperr"
)

// NoteRow represents a row in the notes table. Title is the sanitized title
// (the filename stem); OriginalTitle is the title as authored in the source
// document.
type NoteRow struct {
	Filename      string    `json:"filename"`
	Title         string    `json:"title"`
	OriginalTitle string    `json:"original_title"`
	Checksum      string    `json:"checksum"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
}

// Link is a directed wikilink edge between notes. Target is a sanitized
// title (no .md extension).
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Stats summarises the indexed conversion.
type Stats struct {
	Notes      int `json:"notes"`
	Links      int `json:"links"`
	Unresolved int `json:"unresolved"`
}

// Reset clears all indexed notes and links. Called at the start of a
// conversion so the index always mirrors the latest run.
func (db *DB) Reset() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM links`); err != nil {
		return fmt.Errorf("index: clear links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("index: clear notes: %w", err)
	}
	return tx.Commit()
}

// UpsertNote inserts or replaces a note, its body (kept for search
// snippets), and its outgoing links within a transaction.
func (db *DB) UpsertNote(n NoteRow, body string, links []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO notes (filename, title, original_title, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			title          = excluded.title,
			original_title = excluded.original_title,
			checksum       = excluded.checksum,
			body           = excluded.body,
			updated_at     = excluded.updated_at
	`, n.Filename, n.Title, n.OriginalTitle, n.Checksum, body, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// Replace links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, n.Filename)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range links {
			if _, err := stmt.Exec(n.Filename, target); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetNote returns one note row by filename.
func (db *DB) GetNote(filename string) (*NoteRow, error) {
	var n NoteRow
	err := db.conn.QueryRow(`
		SELECT filename, title, original_title, checksum, updated_at
		FROM notes WHERE filename = ?
	`, filename).Scan(&n.Filename, &n.Title, &n.OriginalTitle, &n.Checksum, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note: %w", err)
	}
	return &n, nil
}

// ListNotes returns notes ordered by filename plus the total count.
func (db *DB) ListNotes(limit, offset int) ([]NoteRow, int, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count notes: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT filename, title, original_title, checksum, updated_at
		FROM notes ORDER BY filename LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		var n NoteRow
		if err := rows.Scan(&n.Filename, &n.Title, &n.OriginalTitle, &n.Checksum, &n.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// Search performs a LIKE-based search over titles and bodies.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT filename, title, substr(body, 1, 200)
		FROM notes
		WHERE title LIKE ? OR original_title LIKE ? OR body LIKE ?
		ORDER BY filename
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Filename, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Unresolved returns link edges whose target does not match any indexed
// note title, i.e. references to notes that were never part of the conversion.
func (db *DB) Unresolved() ([]Link, error) {
	rows, err := db.conn.Query(`
		SELECT l.source, l.target
		FROM links l
		LEFT JOIN notes n ON n.title = l.target
		WHERE n.filename IS NULL
		ORDER BY l.source, l.target
	`)
	if err != nil {
		return nil, fmt.Errorf("index: unresolved: %w", err)
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.Source, &l.Target); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Stats returns note, link, and unresolved-link counts.
func (db *DB) Stats() (Stats, error) {
	var s Stats
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&s.Notes); err != nil {
		return s, fmt.Errorf("index: stats notes: %w", err)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM links`).Scan(&s.Links); err != nil {
		return s, fmt.Errorf("index: stats links: %w", err)
	}
	err := db.conn.QueryRow(`
		SELECT COUNT(*)
		FROM links l
		LEFT JOIN notes n ON n.title = l.target
		WHERE n.filename IS NULL
	`).Scan(&s.Unresolved)
	if err != nil {
		return s, fmt.Errorf("index: stats unresolved: %w", err)
	}
	return s, nil
}
