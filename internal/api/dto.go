package api

import (
	"time"

	"github.com/starford/marknote/internal/models"
)

// SummarizeRequest is the request body for POST /api/summarize.
type SummarizeRequest struct {
	Notes        string `json:"notes" example:"# Meeting\nWe agreed to ship on Friday."`
	MaxSentences int    `json:"max_sentences,omitempty" example:"3"`
}

// TooShortResponse is returned when notes have too few words to summarize.
type TooShortResponse struct {
	Error     string `json:"error"`
	WordCount int    `json:"word_count"`
}

// SaveNoteRequest is the request body for creating or updating a note.
// A nil Title keeps the current title on update.
type SaveNoteRequest struct {
	Notes string  `json:"notes" example:"# Groceries\nmilk, eggs"`
	Title *string `json:"title,omitempty" example:"Groceries"`
}

// SaveNoteResponse is returned after a note is created.
type SaveNoteResponse struct {
	Success bool         `json:"success"`
	NoteID  string       `json:"note_id"`
	Message string       `json:"message"`
	Note    *models.Note `json:"note"`
}

// UpdateNoteResponse is returned after a note is updated.
type UpdateNoteResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Note    *models.Note `json:"note"`
}

// MessageResponse is a bare success acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes      []models.NoteListItem `json:"notes"`
	TotalCount int                   `json:"total_count"`
}

// UploadResponse is returned after a text file is uploaded.
type UploadResponse struct {
	Success bool `json:"success"`
	models.Upload
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results    []models.SearchResult `json:"results"`
	TotalCount int                   `json:"total_count"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Model     string    `json:"model"`
	Features  []string  `json:"features"`
}
