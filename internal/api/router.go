package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/marknote/internal/noteservice"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// RouterConfig holds the dependencies and settings of the API router.
type RouterConfig struct {
	Service *noteservice.Service

	AuthEnabled bool
	AuthToken   string

	CORS CORSConfig

	// SummarizeRPS and SummarizeBurst limit POST /summarize. Zero RPS disables limiting.
	SummarizeRPS   float64
	SummarizeBurst int

	// Events, if non-nil, is mounted at GET /events behind the auth middleware.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes. It is meant to be mounted at /api.
func NewRouter(cfg RouterConfig) chi.Router {
	h := NewHandler(cfg.Service)

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	r.Use(CORS(cfg.CORS))

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.AuthToken))

		r.With(RateLimit(cfg.SummarizeRPS, cfg.SummarizeBurst)).Post("/summarize", h.Summarize)

		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Get("/notes/{id}", h.GetNote)
		r.Put("/notes/{id}", h.UpdateNote)
		r.Delete("/notes/{id}", h.DeleteNote)

		r.Post("/upload", h.Upload)
		r.Get("/export/{id}", h.Export)

		r.Get("/stats", h.Stats)
		r.Get("/search", h.Search)

		if cfg.Events != nil {
			r.Get("/events", cfg.Events.ServeHTTP)
		}
	})

	return r
}
