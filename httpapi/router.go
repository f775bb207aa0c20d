package httpapi

import (
	"chat-hub/observability"
	"chat-hub/search"
	"chat-hub/services"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the REST surface and the websocket upgrade endpoint.
// wsHandler is injected so this package stays transport-agnostic about
// the push channel.
func NewRouter(chatService services.IChatService, index *search.Index,
	monitor *observability.Monitor, wsHandler http.HandlerFunc, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Browser clients call the API and the push channel from another
	// origin during development.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/messages", func(r chi.Router) {
		r.Post("/", HandlePostMessage(chatService, log))
		r.Post("/seen", HandleMarkSeen(chatService, log))
		r.Route("/{roomId}", func(r chi.Router) {
			r.Get("/", HandleGetMessages(chatService, log))
			r.Get("/search", HandleSearchMessages(index, log))
		})
	})

	r.Get("/api/stats", HandleStats(monitor))
	r.Get("/ws", wsHandler)

	return r
}
