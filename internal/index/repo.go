package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultLimit caps search results when the caller passes no limit.
const DefaultLimit = 20

// Row represents a note in the index.
type Row struct {
	ID        string
	Title     string
	Body      string
	Tags      []string
	UpdatedAt time.Time
}

// Upsert inserts or replaces a note and its FTS entry within a transaction.
func (db *DB) Upsert(r Row) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.Exec(`
		INSERT INTO notes (id, title, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, r.ID, r.Title, string(tagsJSON), r.Body, r.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// No-op when the sqlite_fts5 tag is absent.
	if err := ftsUpsert(tx, r.ID, r.Title, r.Body, r.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a note and its FTS entry. Deleting a missing id is not an error.
func (db *DB) Delete(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}
	return tx.Commit()
}

// Count returns the number of indexed notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
