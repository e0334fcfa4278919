package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/nivenlake/journalmate/backend/internal/handler/journal"
	"github.com/nivenlake/journalmate/backend/internal/handler/stream"
	"github.com/nivenlake/journalmate/backend/internal/handler/ws"
	journalService "github.com/nivenlake/journalmate/backend/internal/service/journal"
	"github.com/nivenlake/journalmate/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(corsOrigin string, journalSvc *journalService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Create handlers
	journalHandler := journal.New(journalSvc)
	journalHandler.RegisterRoutes(r)

	// Streaming variant of the chat exchange
	streamHandler := stream.New(journalSvc)
	r.Get("/chat/stream", func(w http.ResponseWriter, req *http.Request) {
		userMessage := req.URL.Query().Get("message")
		if userMessage == "" {
			utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
			return
		}

		if err := streamHandler.HandleStreamRequest(req.Context(), w, userMessage); err != nil {
			log.Printf("[stream] error handling request: %v", err)
		}
	})

	// WebSocket variant of the chat exchange
	wsHandler := ws.New(journalSvc)
	wsHandler.RegisterRoutes(r)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{corsOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return corsHandler.Handler(r)
}
