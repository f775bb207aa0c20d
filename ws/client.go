// Package ws is the push channel: one persistent websocket per client,
// bound to a buffered connection sink and serviced by read/write pumps.
package ws

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/httpapi"
	"chat-hub/services"
	"chat-hub/sink"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 16 * 1024
	closeGraceWait = time.Second
)

// clientCall is the envelope for every client-to-server frame.
type clientCall struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
	UserID   string `json:"userId,omitempty"`
	IsTyping bool   `json:"isTyping,omitempty"`
}

// serverEvent is the envelope for every server-to-client frame.
type serverEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type seenPayload struct {
	MessageID string `json:"messageId"`
	Username  string `json:"username"`
}

type typingPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// Client owns one websocket connection. The read pump turns inbound
// frames into service calls; the write pump drains the connection sink
// the fan-out worker delivers into.
type Client struct {
	id      string
	conn    *websocket.Conn
	sink    *sink.ConnectionSink
	service services.IChatService
	log     *slog.Logger
	done    chan struct{}
}

func NewClient(id string, conn *websocket.Conn, connSink *sink.ConnectionSink,
	service services.IChatService, log *slog.Logger) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		sink:    connSink,
		service: service,
		log:     log,
		done:    make(chan struct{}),
	}
}

// ReadPump consumes client calls until the connection drops, then
// triggers disconnect cleanup. Runs on the upgrade goroutine.
func (c *Client) ReadPump() {
	defer func() {
		close(c.done)
		c.service.Disconnect(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var call clientCall
		if err := c.conn.ReadJSON(&call); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Unexpected websocket close", "conn", c.id, "error", err)
			}
			return
		}
		c.dispatch(call)
	}
}

func (c *Client) dispatch(call clientCall) {
	switch call.Type {
	case "registerUser":
		if err := c.service.Register(c.id, call.Username); err != nil {
			c.log.Debug("Rejected registration", "conn", c.id, "error", err)
		}
	case "joinRoom":
		c.service.Join(c.id, call.RoomID)
	case "leaveRoom":
		c.service.Leave(c.id, call.RoomID)
	case "typing":
		if err := c.service.Typing(c.id, domain.TypingCommand{
			Room:     call.RoomID,
			UserID:   call.UserID,
			IsTyping: call.IsTyping,
		}); err != nil {
			c.log.Debug("Rejected typing signal", "conn", c.id, "error", err)
		}
	default:
		c.log.Debug("Unknown client call", "conn", c.id, "type", call.Type)
	}
}

// WritePump pushes buffered events to the peer and keeps the
// connection alive with pings. Runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(closeGraceWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case evt := <-c.sink.Events:
			wire, ok := toServerEvent(evt)
			if !ok {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(wire); err != nil {
				c.log.Debug("Write failed, closing connection", "conn", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func toServerEvent(e event.Event) (serverEvent, bool) {
	switch payload := e.Payload.(type) {
	case event.NewMessage:
		return serverEvent{Type: payload.EventName(),
			Payload: httpapi.ToMessageResponse(payload.Message)}, true
	case event.MessageSeen:
		return serverEvent{Type: payload.EventName(),
			Payload: seenPayload{MessageID: payload.MessageID, Username: payload.Username}}, true
	case event.UserTyping:
		return serverEvent{Type: payload.EventName(),
			Payload: typingPayload{RoomID: payload.Room, UserID: payload.UserID, IsTyping: payload.IsTyping}}, true
	case event.UserListUpdated:
		return serverEvent{Type: payload.EventName(), Payload: payload.Usernames}, true
	default:
		return serverEvent{}, false
	}
}
