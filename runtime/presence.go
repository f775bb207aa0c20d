// Package runtime owns the process-wide connection state: presence,
// room membership and event fan-out plumbing. It carries no business
// rules; those live in the services package.
package runtime

import "sync"

// Presence maps each live connection to the display name it registered.
// It is the only place usernames are associated with connections.
// Two connections registering the same name are two presence entries:
// OnlineUsers deliberately returns a list, not a set.
type Presence struct {
	mu       sync.RWMutex
	sessions map[string]string // connID -> username
}

func NewPresence() *Presence {
	return &Presence{sessions: make(map[string]string)}
}

// Register upserts the mapping (last write wins per connection) and
// returns the resulting online list for broadcast.
func (p *Presence) Register(connID, username string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[connID] = username
	return p.onlineLocked()
}

// Unregister removes the mapping if present. Absent entries are a
// no-op because disconnect notifications may race or duplicate; the
// current list is returned either way, with changed reporting whether
// presence actually shrank.
func (p *Presence) Unregister(connID string) ([]string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, changed := p.sessions[connID]
	delete(p.sessions, connID)
	return p.onlineLocked(), changed
}

// OnlineUsers returns a snapshot of the currently registered names.
func (p *Presence) OnlineUsers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.onlineLocked()
}

func (p *Presence) onlineLocked() []string {
	users := make([]string, 0, len(p.sessions))
	for _, username := range p.sessions {
		users = append(users, username)
	}
	return users
}
