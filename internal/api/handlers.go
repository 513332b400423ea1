package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/marknote/internal/apperr"
	"github.com/starford/marknote/internal/checksum"
	"github.com/starford/marknote/internal/noteservice"
)

const maxJSONBytes = 10 << 20

var features = []string{"summarize", "save_notes", "load_notes", "list_notes", "search", "export", "upload", "events"}

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Model:     h.svc.Model(),
		Features:  features,
	})
}

// Summarize handles POST /api/summarize.
//
//	@Summary	Summarize markdown notes
//	@Tags		summarize
//	@Accept		json
//	@Produce	json
//	@Param		body	body		SummarizeRequest	true	"Notes to summarize"
//	@Success	200		{object}	models.SummaryResult
//	@Failure	400		{object}	TooShortResponse
//	@Failure	429		{object}	errResponse
//	@Router		/summarize [post]
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Summarize(r.Context(), req.Notes, req.MaxSentences)
	if err != nil {
		var short *apperr.TooShortError
		switch {
		case errors.Is(err, apperr.ErrEmptyInput):
			writeJSON(w, http.StatusBadRequest, errorBody("No notes provided"))
		case errors.As(err, &short):
			writeJSON(w, http.StatusBadRequest, TooShortResponse{
				Error:     fmt.Sprintf("Notes are too short for summarization. Please provide at least %d words.", short.MinWords),
				WordCount: short.WordCount,
			})
		default:
			slog.ErrorContext(r.Context(), "summarize failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("AI summarization error: "+err.Error()))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListNotes handles GET /api/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	items := h.svc.ListNotes(r.Context())
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, TotalCount: len(items)})
}

// CreateNote handles POST /api/notes.
//
//	@Summary	Save a new note
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		body	body		SaveNoteRequest	true	"Note to save"
//	@Success	200		{object}	SaveNoteResponse
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req SaveNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	title := ""
	if req.Title != nil {
		title = *req.Title
	}
	note, err := h.svc.CreateNote(r.Context(), title, req.Notes)
	if err != nil {
		if errors.Is(err, apperr.ErrEmptyInput) {
			writeJSON(w, http.StatusBadRequest, errorBody("No notes content provided"))
		} else {
			slog.ErrorContext(r.Context(), "create note failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("Failed to save notes"))
		}
		return
	}
	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	writeJSON(w, http.StatusOK, SaveNoteResponse{
		Success: true,
		NoteID:  note.ID,
		Message: "Notes saved successfully",
		Note:    note,
	})
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("Note not found"))
		} else {
			slog.ErrorContext(r.Context(), "get note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("Failed to retrieve note"))
		}
		return
	}
	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary	Update a note with optimistic concurrency
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		id			path		string			true	"Note ID"
//	@Param		If-Match	header		string			false	"ETag of the version being replaced"
//	@Param		body		body		SaveNoteRequest	true	"Updated note"
//	@Success	200			{object}	UpdateNoteResponse
//	@Failure	400			{object}	errResponse
//	@Failure	404			{object}	errResponse
//	@Failure	409			{object}	errResponse
//	@Security	BearerAuth
//	@Router		/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SaveNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ifMatch := checksum.ParseIfMatch(r.Header.Get("If-Match"))

	note, err := h.svc.UpdateNote(r.Context(), id, req.Title, req.Notes, ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("Note not found"))
		case errors.Is(err, apperr.ErrEmptyInput):
			writeJSON(w, http.StatusBadRequest, errorBody("No notes content provided"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			slog.ErrorContext(r.Context(), "update note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("Failed to update note"))
		}
		return
	}
	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	writeJSON(w, http.StatusOK, UpdateNoteResponse{
		Success: true,
		Message: "Note updated successfully",
		Note:    note,
	})
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("Note not found"))
		} else {
			slog.ErrorContext(r.Context(), "delete note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("Failed to delete note"))
		}
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Note deleted successfully"})
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context()))
}

// Search handles GET /api/search.
//
//	@Summary	Search notes by title, content and tags
//	@Tags		search
//	@Produce	json
//	@Param		q		query		string	true	"Search query"
//	@Param		limit	query		int		false	"Max results"
//	@Success	200		{object}	SearchResponse
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		if errors.Is(err, apperr.ErrEmptyInput) {
			writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
			return
		}
		slog.ErrorContext(r.Context(), "search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, TotalCount: len(results)})
}
