package index

import (
	"context"

	"github.com/starford/marknote/internal/models"
)

// NoteIndex defines the interface for note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type NoteIndex interface {
	Upsert(row Row) error
	Delete(id string) error
	Search(query string, limit int) ([]models.SearchResult, error)
	Count() (int, error)
	Ping(ctx context.Context) error
	Close() error
}

var _ NoteIndex = (*DB)(nil)
