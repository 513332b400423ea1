// Package storage holds notes in memory and reads and writes markdown files on disk.
package storage

import "github.com/starford/marknote/internal/models"

// NoteStore is the interface for note persistence used by the notes service.
type NoteStore interface {
	// Create stores a new note. An existing id yields apperr.ErrAlreadyExists.
	Create(n *models.Note) error
	// Get returns a copy of the note with id, or apperr.ErrNotFound.
	Get(id string) (*models.Note, error)
	// Update applies fn to a copy of the note under the store lock and saves the
	// result when fn returns nil.
	Update(id string, fn func(n *models.Note) error) (*models.Note, error)
	// Delete removes the note with id, or returns apperr.ErrNotFound.
	Delete(id string) error
	// List returns copies of every stored note in no particular order.
	List() []*models.Note
}

// Files is the interface for markdown files on disk.
type Files interface {
	// List returns the relative paths of every .md file under dir.
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
}
