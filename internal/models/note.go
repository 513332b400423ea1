// Package models defines the domain types for marknote.
package models

import "time"

// Note is a markdown note held by the notes service.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	WordCount int       `json:"word_count"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteListItem is the lightweight representation returned by list operations.
type NoteListItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item returns the list representation of n.
func (n *Note) Item() NoteListItem {
	return NoteListItem{
		ID:        n.ID,
		Title:     n.Title,
		WordCount: n.WordCount,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// SummaryResult is the outcome of a summarize request.
type SummaryResult struct {
	Summary          string    `json:"summary"`
	SummaryID        string    `json:"summary_id"`
	Timestamp        time.Time `json:"timestamp"`
	WordCount        int       `json:"word_count"`
	SummaryWordCount int       `json:"summary_word_count"`
	Model            string    `json:"model"`
}

// Stats aggregates counters over all stored notes.
type Stats struct {
	TotalNotes          int       `json:"total_notes"`
	TotalWords          int       `json:"total_words"`
	AverageWordsPerNote float64   `json:"average_words_per_note"`
	Uptime              string    `json:"server_uptime"`
	Timestamp           time.Time `json:"timestamp"`
}

// Upload is a text file accepted by the upload endpoint.
type Upload struct {
	Content   string `json:"content"`
	Filename  string `json:"filename"`
	WordCount int    `json:"word_count"`
}

// SearchResult is a single hit from the search index.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
