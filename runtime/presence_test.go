package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPresence_RegisterAndUnregister(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	connID := uuid.NewString()

	// Given nobody is online
	req.Empty(presence.OnlineUsers())

	// When a connection registers
	online := presence.Register(connID, "alice")

	// Then the name is online
	req.Equal([]string{"alice"}, online)
	req.Equal([]string{"alice"}, presence.OnlineUsers())

	// When the connection unregisters
	online, changed := presence.Unregister(connID)

	// Then presence shrank
	req.True(changed)
	req.Empty(online)
}

func TestPresence_DuplicateNamesArePreserved(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	// Given two connections registering the same display name
	presence.Register(uuid.NewString(), "alice")
	online := presence.Register(uuid.NewString(), "alice")

	// Then both entries are visible, the list is not a set
	req.Len(online, 2)
	req.Equal([]string{"alice", "alice"}, online)
}

func TestPresence_ReRegisterSameConnectionIsUpsert(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	connID := uuid.NewString()

	// Given a connection registered as alice
	presence.Register(connID, "alice")

	// When the same connection registers again as bob
	online := presence.Register(connID, "bob")

	// Then only the latest name remains for that connection
	req.Equal([]string{"bob"}, online)
}

func TestPresence_UnregisterUnknownConnectionIsSilent(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	presence.Register(uuid.NewString(), "alice")

	// When an unknown connection unregisters
	online, changed := presence.Unregister(uuid.NewString())

	// Then nothing changed
	req.False(changed)
	req.Equal([]string{"alice"}, online)
}
