package httpapi

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/observability"
	"chat-hub/search"
	"chat-hub/services"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// maxMessageLimit clamps the history limit a client may request; the
// store never holds more than one room capacity anyway.
const maxMessageLimit = 1000

// HandleGetMessages serves the recent window of a room in ascending
// chronological order. An unknown room is an empty list, not an error.
func HandleGetMessages(chatService services.IChatService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomId")

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, ErrorResponse{Error: "limit must be an integer"})
				return
			}
			limit = parsed
		}
		if limit > maxMessageLimit {
			limit = maxMessageLimit
		}

		messages := chatService.Messages(roomID, limit)
		render.JSON(w, r, ToMessageResponses(messages))
	}
}

// HandlePostMessage creates a message. The server assigns id and
// createdAt; the broadcast to the room is triggered by the service.
func HandlePostMessage(chatService services.IChatService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
			return
		}

		message, err := chatService.SendMessage(domain.PostMessageCommand{
			Room:    req.RoomID,
			Author:  req.FromUserID,
			Content: req.Text,
		})
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		render.JSON(w, r, ToMessageResponse(message))
	}
}

// HandleMarkSeen records read receipts and reports which ids were
// newly marked. Unknown ids are ignored, not errors.
func HandleMarkSeen(chatService services.IChatService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MarkSeenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
			return
		}

		updated, err := chatService.MarkSeen(domain.MarkSeenCommand{
			Room:       req.RoomID,
			MessageIDs: req.MessageIDs,
			Username:   req.Username,
		})
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		render.JSON(w, r, MarkSeenResponse{Updated: len(updated), IDs: updated})
	}
}

// HandleSearchMessages runs a room-scoped full-text query against the
// in-memory index.
func HandleSearchMessages(index *search.Index, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomId")
		terms := r.URL.Query().Get("q")
		if terms == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "q is required"})
			return
		}

		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		hits, err := index.Search(r.Context(), roomID, terms, limit)
		if err != nil {
			log.Error("Search failed", "room", roomID, "error", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "search failed"})
			return
		}
		render.JSON(w, r, hits)
	}
}

// HandleStats serves a monitoring snapshot.
func HandleStats(monitor *observability.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, monitor.GetLatest())
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if stderrors.Is(err, errors.ErrValidation) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}
	log.Error("Request failed", "error", err)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, ErrorResponse{Error: "internal error"})
}
