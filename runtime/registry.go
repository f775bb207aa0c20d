package runtime

import (
	"chat-hub/contract"
	"sync"
)

type Set map[string]struct{}

// Registry tracks the sink of every bound connection and the room
// membership relation, with a reverse index so a disconnect cleans up
// in O(rooms of that connection) instead of scanning every room.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.EventSink // connID -> sink
	roomMembers map[string]Set                // roomID -> connIDs
	memberRooms map[string]Set                // connID -> roomIDs
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.EventSink),
		roomMembers: make(map[string]Set),
		memberRooms: make(map[string]Set),
	}
}

// Bind registers the connection's delivery sink. A connection must be
// bound before Join for room emission to reach it.
func (r *Registry) Bind(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = sink
}

// Join adds the connection to the room's member set. Idempotent; rooms
// are created lazily on first join.
func (r *Registry) Join(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Set)
	}
	r.roomMembers[roomID][connID] = struct{}{}

	if _, ok := r.memberRooms[connID]; !ok {
		r.memberRooms[connID] = make(Set)
	}
	r.memberRooms[connID][roomID] = struct{}{}
}

// Leave removes the connection from the room. Idempotent, no-op if not
// a member. Empty sets are removed so inert rooms don't accumulate.
func (r *Registry) Leave(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(connID, roomID)
}

// Drop removes the connection from every room it belonged to and
// forgets its sink. Cleanup path for abrupt termination.
func (r *Registry) Drop(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID := range r.memberRooms[connID] {
		r.leaveLocked(connID, roomID)
	}
	delete(r.sessions, connID)
}

func (r *Registry) leaveLocked(connID, roomID string) {
	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
	if rooms, ok := r.memberRooms[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.memberRooms, connID)
		}
	}
}

// SinksForRoom resolves the sinks of every connection currently joined
// to the room, skipping excludeConn when non-empty. A connection that
// joined but was never bound (or already dropped) is simply absent.
// Returns nil for unknown or empty rooms.
func (r *Registry) SinksForRoom(roomID, excludeConn string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for connID := range members {
		if excludeConn != "" && connID == excludeConn {
			continue
		}
		if sink, exists := r.sessions[connID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// AllSinks snapshots every bound sink, for process-wide events.
func (r *Registry) AllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, sink := range r.sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}
