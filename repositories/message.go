package repositories

import (
	"chat-hub/domain"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// DefaultRoomCapacity bounds each room log. Once exceeded, the oldest
	// messages are evicted first.
	DefaultRoomCapacity = 1000
	// DefaultRecentLimit is applied when Recent is called with limit <= 0.
	DefaultRecentLimit = 100
)

// MessageStore keeps a bounded append-only log of messages per room,
// entirely in memory. Rooms are created lazily on first append; an
// unknown room reads as an empty log.
//
// Locking is two-level so unrelated rooms never contend:
// the rooms map has its own lock for O(1) lookup/insert, each room log
// has its own lock for append/snapshot, and each stored message guards
// its SeenBy set independently of the log lock.
type MessageStore struct {
	log      *slog.Logger
	capacity int

	mu    sync.RWMutex
	rooms map[string]*roomLog
}

type roomLog struct {
	mu  sync.RWMutex
	seq uint64
	// window of stored messages in insertion order, oldest first
	messages []*storedMessage
}

// storedMessage pairs a message with its receipt lock.
// The per-message mutex gives MarkSeen its at-most-once contract:
// two concurrent markers for the same user see one winner.
type storedMessage struct {
	mu  sync.Mutex
	msg domain.Message
}

func NewMessageStore(log *slog.Logger, capacity int) *MessageStore {
	if capacity <= 0 {
		capacity = DefaultRoomCapacity
	}
	return &MessageStore{
		log:      log,
		capacity: capacity,
		rooms:    make(map[string]*roomLog),
	}
}

// Append inserts the message at the tail of its room log, assigns the
// room-scoped sequence number, and evicts from the head until the log
// fits the capacity again. Eviction never fails and is only observable
// through subsequent reads.
func (s *MessageStore) Append(message domain.Message) domain.Message {
	room := s.room(message.Room)

	room.mu.Lock()
	room.seq++
	message.Seq = room.seq
	room.messages = append(room.messages, &storedMessage{msg: message})

	if evicted := len(room.messages) - s.capacity; evicted > 0 {
		// Re-slice instead of shifting; compact once the dead prefix
		// grows past the capacity so memory stays flat under sustained traffic.
		room.messages = room.messages[evicted:]
		if cap(room.messages) > 2*s.capacity {
			compacted := make([]*storedMessage, len(room.messages), s.capacity)
			copy(compacted, room.messages)
			room.messages = compacted
		}
		s.log.Debug("Evicted oldest messages", "room", message.Room, "count", evicted)
	}
	room.mu.Unlock()

	return message
}

// Recent returns up to limit most-recent messages for the room in
// ascending sequence order. Unknown rooms yield an empty slice, never
// an error. The result is a snapshot: later mutations of SeenBy are
// not reflected in it.
func (s *MessageStore) Recent(roomID string, limit int) []domain.Message {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return []domain.Message{}
	}

	room.mu.RLock()
	window := room.messages
	if len(window) > limit {
		window = window[len(window)-limit:]
	}
	out := make([]domain.Message, 0, len(window))
	for _, sm := range window {
		out = append(out, sm.snapshot())
	}
	room.mu.RUnlock()

	return out
}

// MarkSeen records username as having seen each requested message that
// is still present in the room log, and returns the ids that were newly
// marked. Ids that are unknown, already evicted, belong to another room,
// or do not parse as message ids are silently ignored. The operation is
// idempotent per (message, username) pair.
func (s *MessageStore) MarkSeen(roomID string, messageIDs []string, username string) []string {
	updated := make([]string, 0, len(messageIDs))
	if len(messageIDs) == 0 {
		return updated
	}

	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return updated
	}

	requested := make(map[uuid.UUID]struct{}, len(messageIDs))
	for _, raw := range messageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			// Treated like a message that was never sent
			continue
		}
		requested[id] = struct{}{}
	}

	room.mu.RLock()
	window := make([]*storedMessage, len(room.messages))
	copy(window, room.messages)
	room.mu.RUnlock()

	// Operate on the snapshot but mutate the shared entries, so a
	// concurrent eviction cannot block receipts and receipts on
	// still-present messages are never lost.
	for _, sm := range window {
		if _, ok := requested[sm.msg.ID]; !ok {
			continue
		}
		if sm.markSeen(username) {
			updated = append(updated, sm.msg.ID.String())
		}
	}
	return updated
}

// room returns the log for roomID, creating it lazily.
func (s *MessageStore) room(roomID string) *roomLog {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if ok {
		return room
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok = s.rooms[roomID]; ok {
		return room
	}
	room = &roomLog{}
	s.rooms[roomID] = room
	return room
}

// markSeen test-and-sets username into SeenBy. Returns true only for
// the caller that actually added it.
func (sm *storedMessage) markSeen(username string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.msg.HasSeen(username) {
		return false
	}
	sm.msg.SeenBy = append(sm.msg.SeenBy, username)
	return true
}

// snapshot copies the message including its SeenBy set under the
// receipt lock, so readers never observe a half-written update.
func (sm *storedMessage) snapshot() domain.Message {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	msg := sm.msg
	msg.SeenBy = append([]string(nil), sm.msg.SeenBy...)
	return msg
}
