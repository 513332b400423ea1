// Package testutil provides shared test helpers for setting up indexes and note services.
package testutil

import (
	"testing"

	"github.com/starford/marknote/internal/index"
	"github.com/starford/marknote/internal/noteservice"
	"github.com/starford/marknote/internal/storage"
	"github.com/starford/marknote/internal/summarizer"
)

// TestDB creates an in-memory search index that is closed when the test ends.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(index.MemoryDSN)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestService creates a note service over an in-memory store and index.
// A nil sum uses the extractive summarizer with a budget of three sentences.
func TestService(t *testing.T, sum summarizer.Summarizer, opts ...noteservice.Option) *noteservice.Service {
	t.Helper()
	if sum == nil {
		sum = summarizer.NewExtractive(summarizer.DefaultMaxSentences)
	}
	return noteservice.New(storage.NewMemory(), TestDB(t), sum, opts...)
}
