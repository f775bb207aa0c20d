// Package httpapi exposes the request/response surface of the hub:
// message history, message creation and read receipts.
package httpapi

import (
	"chat-hub/domain"
	"time"

	"github.com/samber/lo"
)

type (
	CreateMessageRequest struct {
		RoomID     string `json:"roomId"`
		FromUserID string `json:"fromUserId"`
		Text       string `json:"text"`
	}

	MarkSeenRequest struct {
		RoomID     string   `json:"roomId"`
		MessageIDs []string `json:"messageIds"`
		Username   string   `json:"username"`
	}

	MarkSeenResponse struct {
		Updated int      `json:"updated"`
		IDs     []string `json:"ids"`
	}

	MessageResponse struct {
		ID         string    `json:"id"`
		RoomID     string    `json:"roomId"`
		FromUserID string    `json:"fromUserId"`
		Text       string    `json:"text"`
		CreatedAt  time.Time `json:"createdAt"`
		SeenBy     []string  `json:"seenBy"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

func ToMessageResponse(m domain.Message) MessageResponse {
	seenBy := m.SeenBy
	if seenBy == nil {
		seenBy = []string{}
	}
	return MessageResponse{
		ID:         m.ID.String(),
		RoomID:     m.Room,
		FromUserID: m.Author,
		Text:       m.Content,
		CreatedAt:  m.CreatedAt.UTC(),
		SeenBy:     seenBy,
	}
}

func ToMessageResponses(messages []domain.Message) []MessageResponse {
	return lo.Map(messages, func(item domain.Message, _ int) MessageResponse {
		return ToMessageResponse(item)
	})
}
