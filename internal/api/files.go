package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/marknote/internal/apperr"
)

// MaxUploadBytes caps the size of a multipart upload.
const MaxUploadBytes = 16 << 20

// Upload handles POST /api/upload (multipart/form-data, field "file").
// The file is read into memory and returned; nothing is stored.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("File too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("No file part"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		// A file input submitted without a selection arrives as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			writeJSON(w, http.StatusBadRequest, errorBody("No selected file"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("No file part"))
		return
	}
	defer file.Close()

	up, err := h.svc.ReadUpload(header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrEmptyInput):
			writeJSON(w, http.StatusBadRequest, errorBody("No selected file"))
		case errors.Is(err, apperr.ErrUnsupportedType):
			writeJSON(w, http.StatusBadRequest, errorBody("File type not allowed"))
		default:
			slog.ErrorContext(r.Context(), "upload failed", slog.String("filename", header.Filename), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("Failed to upload file"))
		}
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Success: true, Upload: *up})
}

// Export handles GET /api/export/{id}: the note as a markdown attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name, body, err := h.svc.ExportNote(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("Note not found"))
		} else {
			slog.ErrorContext(r.Context(), "export failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("Failed to export note"))
		}
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
