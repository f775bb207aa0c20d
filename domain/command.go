package domain

// Commands are the inbound actions of the chat service.
// Validation tags describe the preconditions of each action;
// string fields are trimmed by the service before validation so
// whitespace-only input is rejected like empty input.

type Command interface {
	RoomID() string
}

type PostMessageCommand struct {
	Room    string `validate:"required"`
	Author  string `validate:"required"`
	Content string
}

func (c PostMessageCommand) RoomID() string { return c.Room }

type MarkSeenCommand struct {
	Room       string   `validate:"required"`
	MessageIDs []string `validate:"required,min=1"`
	Username   string   `validate:"required"`
}

func (c MarkSeenCommand) RoomID() string { return c.Room }

type TypingCommand struct {
	Room     string `validate:"required"`
	UserID   string `validate:"required"`
	IsTyping bool
}

func (c TypingCommand) RoomID() string { return c.Room }
