//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/moderation"
	"chat-hub/observability"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type IChatService interface {
	Register(connID, username string) error
	Disconnect(connID string)
	Join(connID, roomID string)
	Leave(connID, roomID string)
	Typing(connID string, cmd domain.TypingCommand) error
	SendMessage(cmd domain.PostMessageCommand) (domain.Message, error)
	MarkSeen(cmd domain.MarkSeenCommand) ([]string, error)
	Messages(roomID string, limit int) []domain.Message
}

// ChatService is the orchestration layer: it validates inbound
// actions, mutates the store and registries, and emits the resulting
// events. State mutation always commits before fan-out is attempted;
// a lost push never rolls anything back.
type ChatService struct {
	log         *slog.Logger
	store       contract.IMessageStore
	presence    contract.IPresence
	broadcaster contract.IBroadcaster
	moderator   moderation.Moderator
	monitor     *observability.Monitor
	validate    *validator.Validate
}

func NewChatService(log *slog.Logger, store contract.IMessageStore,
	presence contract.IPresence, broadcaster contract.IBroadcaster,
	moderator moderation.Moderator, monitor *observability.Monitor) *ChatService {
	return &ChatService{
		log:         log,
		store:       store,
		presence:    presence,
		broadcaster: broadcaster,
		moderator:   moderator,
		monitor:     monitor,
		validate:    validator.New(),
	}
}

// Register associates a display name with the connection and pushes
// the updated online list to every connection.
func (s *ChatService) Register(connID, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", errors.ErrValidation)
	}

	online := s.presence.Register(connID, username)
	s.emit(func() {
		s.broadcaster.EmitToAll(event.UserListUpdated{Usernames: online})
	})
	return nil
}

// Disconnect cleans up presence and membership for a gone connection.
// The online list is only rebroadcast when presence actually changed,
// so duplicate disconnect notifications stay silent.
func (s *ChatService) Disconnect(connID string) {
	online, changed := s.presence.Unregister(connID)
	s.broadcaster.Drop(connID)
	if changed {
		s.emit(func() {
			s.broadcaster.EmitToAll(event.UserListUpdated{Usernames: online})
		})
	}
}

func (s *ChatService) Join(connID, roomID string) {
	s.broadcaster.Join(connID, strings.TrimSpace(roomID))
}

func (s *ChatService) Leave(connID, roomID string) {
	s.broadcaster.Leave(connID, strings.TrimSpace(roomID))
}

// Typing relays an ephemeral typing signal to the room, excluding the
// sender who already knows its own state. No state is touched.
func (s *ChatService) Typing(connID string, cmd domain.TypingCommand) error {
	cmd.Room = strings.TrimSpace(cmd.Room)
	cmd.UserID = strings.TrimSpace(cmd.UserID)
	if err := s.validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrValidation, err)
	}

	s.emit(func() {
		s.broadcaster.EmitToRoomExceptSender(cmd.Room, connID, event.UserTyping{
			Room:     cmd.Room,
			UserID:   cmd.UserID,
			IsTyping: cmd.IsTyping,
		})
	})
	return nil
}

// SendMessage censors the text, appends the message to the room log
// and broadcasts it to the room, sender included. The stored message
// (with server-assigned id and timestamp) is returned to the caller.
func (s *ChatService) SendMessage(cmd domain.PostMessageCommand) (domain.Message, error) {
	cmd.Room = strings.TrimSpace(cmd.Room)
	cmd.Author = strings.TrimSpace(cmd.Author)
	if err := s.validate.Struct(cmd); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %s", errors.ErrValidation, err)
	}

	content, censored := s.moderator.Censor(cmd.Content)
	if len(censored) > 0 {
		s.log.Debug("Censored outbound message",
			"room", cmd.Room, "author", cmd.Author, "words", len(censored))
	}

	message := s.store.Append(domain.Message{
		ID:        uuid.New(),
		Room:      cmd.Room,
		Author:    cmd.Author,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		SeenBy:    []string{},
	})
	s.monitor.IncrMessagesStored()

	s.emit(func() {
		s.broadcaster.EmitToRoom(message.Room, event.NewMessage{Message: message})
	})
	return message, nil
}

// MarkSeen records the read receipts and broadcasts one MessageSeen
// per id that was newly marked. Already-seen and unknown ids produce
// no event, which keeps client retries quiet.
func (s *ChatService) MarkSeen(cmd domain.MarkSeenCommand) ([]string, error) {
	cmd.Room = strings.TrimSpace(cmd.Room)
	cmd.Username = strings.TrimSpace(cmd.Username)
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrValidation, err)
	}

	updated := s.store.MarkSeen(cmd.Room, cmd.MessageIDs, cmd.Username)
	s.monitor.IncrReceipts(len(updated))

	for _, id := range updated {
		id := id
		s.emit(func() {
			s.broadcaster.EmitToRoom(cmd.Room, event.MessageSeen{
				Room:      cmd.Room,
				MessageID: id,
				Username:  cmd.Username,
			})
		})
	}
	return updated, nil
}

// Messages returns the recent window of a room in chronological order.
// Unknown rooms degrade to an empty slice, never an error.
func (s *ChatService) Messages(roomID string, limit int) []domain.Message {
	return s.store.Recent(strings.TrimSpace(roomID), limit)
}

func (s *ChatService) emit(fn func()) {
	fn()
	s.monitor.IncrEventsEmitted()
}
