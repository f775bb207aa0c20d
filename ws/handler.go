package ws

import (
	"chat-hub/contract"
	"chat-hub/observability"
	"chat-hub/services"
	"chat-hub/sink"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests to websocket connections and binds
// each connection into the event fan-out.
func Handler(service services.IChatService, registry contract.IRegistry,
	monitor *observability.Monitor, bufferSize int, log *slog.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		// Origin is enforced by the CORS layer in front of the router.
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("Websocket upgrade failed", "error", err)
			return
		}

		connID := uuid.NewString()
		connSink := sink.NewConnectionSink(bufferSize)
		registry.Bind(connID, connSink)
		monitor.ConnectionOpened()

		log.Info("Connection opened", "conn", connID, "remote", r.RemoteAddr)

		client := NewClient(connID, conn, connSink, service, log)
		go client.WritePump()
		client.ReadPump()

		monitor.ConnectionClosed()
		log.Info("Connection closed", "conn", connID)
	}
}
