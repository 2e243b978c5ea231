package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vinayskanse/blocky/internal/api/handler"
	"github.com/vinayskanse/blocky/internal/api/middleware"
	"github.com/vinayskanse/blocky/internal/service"
	"github.com/vinayskanse/blocky/internal/storage"
)

// NewRouter creates the daemon's HTTP router with all routes configured.
func NewRouter(store storage.Storage, blocklist *service.BlocklistService, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(log))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)

		groupHandler := handler.NewGroupHandler(store)
		r.Get("/groups", groupHandler.List)
		r.Post("/groups", groupHandler.Create)
		r.Put("/groups/{id}", groupHandler.Update)
		r.Put("/groups/{id}/domains", groupHandler.UpdateDomains)
		r.Put("/groups/{id}/schedule", groupHandler.UpdateSchedule)
		r.Delete("/groups/{id}", groupHandler.Delete)

		blocklistHandler := handler.NewBlocklistHandler(blocklist)
		r.Get("/blocklist", blocklistHandler.Get)
	})

	return r
}
