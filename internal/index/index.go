// Package index provides a SQLite-backed index of the converted notes and
// the wikilink graph between them.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	filename       TEXT PRIMARY KEY,
	title          TEXT NOT NULL DEFAULT '',
	original_title TEXT NOT NULL DEFAULT '',
	checksum       TEXT NOT NULL DEFAULT '',
	body           TEXT NOT NULL DEFAULT '',
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS links (
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	UNIQUE(source, target)
);

CREATE INDEX IF NOT EXISTS idx_links_source ON links(source);
CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// NoteIndex defines the indexing operations the converter and the preview
// surfaces depend on. Consumers should depend on this interface rather than
// the concrete *DB type to facilitate testing with mocks.
type NoteIndex interface {
	Reset() error
	UpsertNote(n NoteRow, body string, links []string) error
	GetNote(filename string) (*NoteRow, error)
	ListNotes(limit, offset int) ([]NoteRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Unresolved() ([]Link, error)
	Stats() (Stats, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
