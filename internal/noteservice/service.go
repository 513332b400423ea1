// Package noteservice implements note management and summarization on top of
// the note store, the search index and a summarizer.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/marknote/internal/apperr"
	"github.com/starford/marknote/internal/checksum"
	"github.com/starford/marknote/internal/index"
	"github.com/starford/marknote/internal/models"
	"github.com/starford/marknote/internal/parser"
	"github.com/starford/marknote/internal/sse"
	"github.com/starford/marknote/internal/storage"
	"github.com/starford/marknote/internal/summarizer"
)

// DefaultMinWords is the shortest input accepted for summarization.
const DefaultMinWords = 10

// Publisher receives note change notifications.
type Publisher interface {
	PublishNoteEvent(kind string, note sse.NoteRef, stats func() interface{})
}

// Service coordinates the note store, the search index, the summarizer and
// change notifications.
type Service struct {
	store  storage.NoteStore
	idx    index.NoteIndex
	sum    summarizer.Summarizer
	events Publisher
	logger *slog.Logger

	// indexMu serialises index writes; each write mirrors the store as it is
	// when the lock is held.
	indexMu sync.Mutex

	minWords     int
	maxSentences int

	now     func() time.Time
	newID   func() string
	started time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the receiver of note change events.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMinWords sets the minimum word count accepted by Summarize.
func WithMinWords(n int) Option {
	return func(s *Service) { s.minWords = n }
}

// WithMaxSentences sets the sentence budget used when a request names none.
func WithMaxSentences(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSentences = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// New creates a note service. idx may be nil, in which case Search is unavailable.
func New(store storage.NoteStore, idx index.NoteIndex, sum summarizer.Summarizer, opts ...Option) *Service {
	s := &Service{
		store:        store,
		idx:          idx,
		sum:          sum,
		logger:       slog.Default(),
		minWords:     DefaultMinWords,
		maxSentences: summarizer.DefaultMaxSentences,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	s.started = s.now()
	return s
}

// Model returns the name reported for summaries.
func (s *Service) Model() string { return s.sum.Name() }

// Summarize summarizes notes with at most maxSentences sentences when the summarizer
// supports a budget. maxSentences <= 0 uses the configured default.
func (s *Service) Summarize(ctx context.Context, notes string, maxSentences int) (*models.SummaryResult, error) {
	text := strings.TrimSpace(notes)
	if text == "" {
		return nil, apperr.ErrEmptyInput
	}
	wc := parser.CountWords(text)
	if wc < s.minWords {
		return nil, &apperr.TooShortError{WordCount: wc, MinWords: s.minWords}
	}
	if maxSentences <= 0 {
		maxSentences = s.maxSentences
	}

	var (
		summary string
		err     error
	)
	if b, ok := s.sum.(summarizer.BudgetSummarizer); ok {
		summary, err = b.SummarizeN(ctx, text, maxSentences)
	} else {
		summary, err = s.sum.Summarize(ctx, text)
	}
	if err != nil {
		return nil, err
	}

	return &models.SummaryResult{
		Summary:          summary,
		SummaryID:        s.newID(),
		Timestamp:        s.now(),
		WordCount:        wc,
		SummaryWordCount: parser.CountWords(summary),
		Model:            s.sum.Name(),
	}, nil
}

// CreateNote stores a new note. An empty title falls back to the note's own
// title, then to a timestamped placeholder.
func (s *Service) CreateNote(ctx context.Context, title, notes string) (*models.Note, error) {
	content := strings.TrimSpace(notes)
	if content == "" {
		return nil, apperr.ErrEmptyInput
	}
	res := parser.Parse([]byte(content))
	now := s.now()

	title = strings.TrimSpace(title)
	if title == "" {
		title = res.Title
	}
	if title == "" {
		title = "Untitled Notes - " + now.Format("2006-01-02 15:04")
	}

	n := &models.Note{
		ID:        s.newID(),
		Title:     title,
		Content:   content,
		Tags:      res.Tags,
		WordCount: parser.CountWords(content),
		Checksum:  checksum.Sum([]byte(content)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(n); err != nil {
		return nil, err
	}
	s.reindex(ctx, n.ID)
	s.publish(sse.KindCreated, n)
	return n, nil
}

// ListNotes returns every note, newest first.
func (s *Service) ListNotes(_ context.Context) []models.NoteListItem {
	notes := s.store.List()
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return notes[i].ID < notes[j].ID
	})
	items := make([]models.NoteListItem, len(notes))
	for i, n := range notes {
		items[i] = n.Item()
	}
	return items
}

// GetNote returns the note with id.
func (s *Service) GetNote(_ context.Context, id string) (*models.Note, error) {
	return s.store.Get(id)
}

// UpdateNote replaces the content of a note and, when title is non-nil and not
// blank, its title. A non-empty ifMatch must equal the current checksum.
func (s *Service) UpdateNote(ctx context.Context, id string, title *string, notes, ifMatch string) (*models.Note, error) {
	if _, err := s.store.Get(id); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(notes)
	if content == "" {
		return nil, apperr.ErrEmptyInput
	}
	res := parser.Parse([]byte(content))

	n, err := s.store.Update(id, func(n *models.Note) error {
		if ifMatch != "" && ifMatch != n.Checksum {
			return fmt.Errorf("note %s: %w", id, apperr.ErrConflict)
		}
		if title != nil && strings.TrimSpace(*title) != "" {
			n.Title = strings.TrimSpace(*title)
		}
		n.Content = content
		n.Tags = res.Tags
		n.WordCount = parser.CountWords(content)
		n.Checksum = checksum.Sum([]byte(content))
		n.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, n.ID)
	s.publish(sse.KindUpdated, n)
	return n, nil
}

// DeleteNote removes the note with id.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	n, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.reindex(ctx, id)
	s.publish(sse.KindDeleted, n)
	return nil
}

// ExportNote renders a note as a standalone markdown document and returns it
// with a download file name.
func (s *Service) ExportNote(_ context.Context, id string) (string, []byte, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", n.Title)
	fmt.Fprintf(&b, "Created: %s\n", n.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Updated: %s\n\n", n.UpdatedAt.Format(time.RFC3339))
	b.WriteString("---\n\n")
	b.WriteString(n.Content)
	return ExportFilename(n.Title), []byte(b.String()), nil
}

// ExportFilename derives the download name of an exported note.
func ExportFilename(title string) string {
	return strings.ReplaceAll(title, " ", "_") + ".md"
}

// Stats returns aggregate counters over all notes.
func (s *Service) Stats(_ context.Context) models.Stats {
	notes := s.store.List()
	total := 0
	for _, n := range notes {
		total += n.WordCount
	}
	avg := 0.0
	if len(notes) > 0 {
		avg = float64(total) / float64(len(notes))
	}
	now := s.now()
	return models.Stats{
		TotalNotes:          len(notes),
		TotalWords:          total,
		AverageWordsPerNote: avg,
		Uptime:              now.Sub(s.started).Round(time.Second).String(),
		Timestamp:           now,
	}
}

// ErrSearchUnavailable is returned by Search when the service has no index.
var ErrSearchUnavailable = errors.New("search index unavailable")

// Search finds notes whose title, content or tags contain query.
func (s *Service) Search(_ context.Context, query string, limit int) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.ErrEmptyInput
	}
	if s.idx == nil {
		return nil, ErrSearchUnavailable
	}
	return s.idx.Search(query, limit)
}

// Ready reports whether the service's dependencies are usable.
func (s *Service) Ready(ctx context.Context) error {
	if s.idx == nil {
		return nil
	}
	return s.idx.Ping(ctx)
}

// reindex brings the index entry for id in line with the store: the current
// version is upserted, a missing note is deleted.
func (s *Service) reindex(ctx context.Context, id string) {
	if s.idx == nil {
		return
	}
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	n, err := s.store.Get(id)
	if errors.Is(err, apperr.ErrNotFound) {
		if err := s.idx.Delete(id); err != nil {
			s.logger.WarnContext(ctx, "index delete failed", slog.String("id", id), slog.String("error", err.Error()))
		}
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "index reload failed", slog.String("id", id), slog.String("error", err.Error()))
		return
	}
	err = s.idx.Upsert(index.Row{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Content,
		Tags:      n.Tags,
		UpdatedAt: n.UpdatedAt,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "index upsert failed", slog.String("id", n.ID), slog.String("error", err.Error()))
	}
}

func (s *Service) publish(kind string, n *models.Note) {
	if s.events == nil {
		return
	}
	s.events.PublishNoteEvent(kind, sse.NoteRef{ID: n.ID, Title: n.Title}, func() interface{} {
		return s.Stats(context.Background())
	})
}
